package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xpring-eng/xpring-go/internal"
	"github.com/xpring-eng/xpring-go/internal/legacynetworkclient"
)

// initRouter wires the HTTP glue over a submission client. The wallet may
// be nil, in which case payment requests are rejected.
func initRouter(client *internal.Client, wallet *internal.Wallet, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	r.Get("/accounts/{address}/balance", func(w http.ResponseWriter, req *http.Request) {
		address := chi.URLParam(req, "address")
		balance, err := client.GetBalance(req.Context(), address)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"address": address,
			"drops":   balance,
		})
	})

	r.Post("/payments", func(w http.ResponseWriter, req *http.Request) {
		if wallet == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no sending wallet configured"})
			return
		}
		var body struct {
			Destination string `json:"destination"`
			Drops       uint64 `json:"drops"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}
		result, err := client.Send(req.Context(), wallet, internal.Drops(body.Drops), body.Destination)
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	r.Get("/transactions/{hash}", func(w http.ResponseWriter, req *http.Request) {
		status, err := client.GetTransactionStatus(req.Context(), chi.URLParam(req, "hash"))
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/ledger", func(w http.ResponseWriter, req *http.Request) {
		seq, err := client.GetLatestValidatedLedgerSequence(req.Context())
		if err != nil {
			writeError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]uint32{"ledger_index": seq})
	})

	return r
}

// writeError maps the client's error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := http.StatusInternalServerError

	var invalidErr *internal.InvalidAddressError
	var malformedErr *internal.MalformedResponseError
	var signingErr *internal.SigningFailureError
	var netErr *internal.NetworkError
	switch {
	case errors.As(err, &invalidErr):
		status = http.StatusBadRequest
	case errors.As(err, &malformedErr):
		status = http.StatusBadGateway
	case errors.As(err, &signingErr):
		status = http.StatusInternalServerError
	case errors.As(err, &netErr):
		switch {
		case netErr.IsTimeout():
			status = http.StatusGatewayTimeout
		case netErr.IsNotFound():
			status = http.StatusNotFound
		default:
			status = http.StatusBadGateway
		}
	case errors.Is(err, legacynetworkclient.ErrNotSupported):
		status = http.StatusNotImplemented
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
