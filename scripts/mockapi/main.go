// Command mockapi serves a fake vendas API for local development, so the
// dashboard can run without the real upstream.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type sale struct {
	ID       string  `json:"id"`
	Product  string  `json:"produto"`
	Quantity int64   `json:"quantidade"`
	Date     string  `json:"data"`
	Value    float64 `json:"valor"`
}

var products = []string{"Caneta", "Caderno", "Lápis", "Borracha", "Mochila", "Estojo"}

func generateSales(days int) []sale {
	rng := rand.New(rand.NewSource(42))
	start := time.Now().UTC().AddDate(0, 0, -days)
	sales := make([]sale, 0, days*3)
	for day := 0; day < days; day++ {
		date := start.AddDate(0, 0, day).Format("2006-01-02")
		for i := 0; i < 1+rng.Intn(4); i++ {
			sales = append(sales, sale{
				ID:       uuid.NewString(),
				Product:  products[rng.Intn(len(products))],
				Quantity: int64(1 + rng.Intn(9)),
				Date:     date,
				Value:    float64(5+rng.Intn(200)) + 0.9,
			})
		}
	}
	return sales
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	days := flag.Int("days", 60, "days of generated sales history")
	flag.Parse()

	sales := generateSales(*days)
	byID := make(map[string]sale, len(sales))
	for _, s := range sales {
		byID[s.ID] = s
	}

	r := chi.NewRouter()
	r.Get("/vendas", func(w http.ResponseWriter, req *http.Request) {
		from := req.URL.Query().Get("dataInicio")
		to := req.URL.Query().Get("dataFim")
		filtered := make([]sale, 0, len(sales))
		for _, s := range sales {
			if from != "" && s.Date < from {
				continue
			}
			if to != "" && s.Date > to {
				continue
			}
			filtered = append(filtered, s)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(filtered)
	})
	r.Get("/vendas/{id}", func(w http.ResponseWriter, req *http.Request) {
		s, ok := byID[chi.URLParam(req, "id")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"detalhe": "venda não encontrada"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s)
	})
	r.Post("/auth/login", func(w http.ResponseWriter, req *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"senha"`
		}
		if err := json.NewDecoder(req.Body).Decode(&creds); err != nil || strings.TrimSpace(creds.Password) == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detalhe": "credenciais inválidas"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": uuid.NewString()})
	})

	log.Printf("mock vendas api listening on %s (%d sales)", *addr, len(sales))
	log.Fatal(http.ListenAndServe(*addr, r))
}
