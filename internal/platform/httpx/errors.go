package httpx

import (
	"net/http"

	"github.com/vendascope/vendascope/internal/salesapi"
)

// RespondError maps client error kinds onto RFC7807 responses. The vendas API
// sits upstream of this service, so its failures surface as gateway errors.
func RespondError(w http.ResponseWriter, err error) {
	switch salesapi.KindOf(err) {
	case salesapi.KindValidation:
		Problem(w, http.StatusBadRequest, "Parâmetro inválido", err.Error())
	case salesapi.KindAPI, salesapi.KindDecode:
		Problem(w, http.StatusBadGateway, "Falha na API de vendas", err.Error())
	case salesapi.KindTransport:
		Problem(w, http.StatusGatewayTimeout, "API de vendas inacessível", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Erro interno", "")
	}
}
