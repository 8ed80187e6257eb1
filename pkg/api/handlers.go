package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/carverauto/assetradar/pkg/compare"
	"github.com/carverauto/assetradar/pkg/models"
	"github.com/carverauto/assetradar/pkg/registry"
	"github.com/carverauto/assetradar/pkg/sources"
	"github.com/carverauto/assetradar/pkg/version"
)

const maxBodyBytes = 1 << 20

func (*Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.GetVersion()})
}

func (s *Server) listSources(w http.ResponseWriter, r *http.Request) {
	entries, err := s.registry.ListSources(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) ingestObservation(w http.ResponseWriter, r *http.Request) {
	var body ObservationRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	fields, err := sources.DecodeJSONFields(body.Fields)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.registry.Ingest(r.Context(), &registry.Request{
		Source:     mux.Vars(r)["source"],
		Fields:     fields,
		ObservedAt: body.ObservedAt,
		AssetID:    body.AssetID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) getFreshness(w http.ResponseWriter, r *http.Request) {
	desc, err := sources.Lookup(mux.Vars(r)["source"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	last, ok, err := s.registry.GetSourceFreshness(r.Context(), string(desc.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := FreshnessResponse{Source: desc.Name}
	if ok {
		resp.LastUpdate = &last
	}

	writeJSON(w, http.StatusOK, resp)
}

// getComparison streams a JSON array. Once the first byte is written a
// storage failure can only truncate the response, so it is logged.
func (s *Server) getComparison(w http.ResponseWriter, r *http.Request) {
	desc, err := sources.Lookup(mux.Vars(r)["source"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	onlyDiscrepancies := r.URL.Query().Get("discrepancies") == "only"
	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	started := false
	count := 0

	for row, err := range s.comparison.ListComparison(r.Context(), string(desc.Name)) {
		if err != nil {
			if !started {
				s.writeError(w, r, err)
				return
			}

			s.logger.Error().Err(err).Str("source", string(desc.Name)).Int("rows", count).
				Msg("comparison stream aborted")

			return
		}

		if onlyDiscrepancies && len(compare.Discrepancies(row)) == 0 {
			continue
		}

		if !started {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("["))
			started = true
		} else {
			_, _ = w.Write([]byte(","))
		}

		if err := enc.Encode(row); err != nil {
			s.logger.Warn().Err(err).Msg("comparison client went away")
			return
		}

		count++

		if flusher != nil && count%100 == 0 {
			flusher.Flush()
		}
	}

	if !started {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("["))
	}

	_, _ = w.Write([]byte("]\n"))
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	asset, err := s.registry.GetAsset(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) amendAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch models.AssetPatch
	if err := decodeBody(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	asset, err := s.registry.AmendAsset(r.Context(), id, &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := assetID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.registry.DeleteAsset(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func assetID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidAssetID
	}

	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	return nil
}
