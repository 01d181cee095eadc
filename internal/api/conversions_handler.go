package api

import (
	"bytes"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/export"
)

func listConversionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 1000 {
				WriteError(w, http.StatusBadRequest, "limit must be between 1 and 1000", "BAD_REQUEST")
				return
			}
			limit = n
		}

		convs, err := cfg.CatalogService.History(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list conversions", "INTERNAL_ERROR")
			return
		}

		resp := ConversionsResponse{Conversions: make([]ConversionResponse, len(convs))}
		for i, c := range convs {
			resp.Conversions[i] = ConversionToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// lookupConversion writes the error response itself and returns nil when
// the conversion cannot be served.
func lookupConversion(cfg ServerConfig, w http.ResponseWriter, r *http.Request) *catalog.Conversion {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "conversion id required", "BAD_REQUEST")
		return nil
	}

	conv, err := cfg.CatalogService.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil
	}
	if conv == nil {
		WriteError(w, http.StatusNotFound, "conversion not found", "NOT_FOUND")
		return nil
	}
	return conv
}

func getConversionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv := lookupConversion(cfg, w, r)
		if conv == nil {
			return
		}
		WriteJSON(w, http.StatusOK, ConversionToResponse(conv))
	}
}

func conversionCSVHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv := lookupConversion(cfg, w, r)
		if conv == nil {
			return
		}
		if conv.Status != catalog.StatusCompleted {
			WriteError(w, http.StatusConflict, "conversion has no rows (status "+conv.Status+")", "NOT_COMPLETED")
			return
		}
		extended, err := queryBool(r, "extended", false)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, conv.Rows, extended); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to render CSV", "INTERNAL_ERROR")
			return
		}

		w.Header().Set("Content-Type", export.FormatCSV.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": export.OutputName(conv.Filename, conv.Sequence, export.FormatCSV),
		}))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

func deleteConversionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		deleted, err := cfg.CatalogService.Delete(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if !deleted {
			WriteError(w, http.StatusNotFound, "conversion not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
