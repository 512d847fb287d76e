package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/taproom/pkg/domain/model"
	"github.com/secmon-lab/taproom/pkg/domain/types"
	"github.com/secmon-lab/taproom/pkg/utils/errutil"
)

const maxRequestBody = 1 << 20

// Response headers summarizing an ingestion batch
const (
	HeaderIngestBatch      = "X-Ingest-Batch"
	HeaderIngestDuplicates = "X-Ingest-Duplicates"
	HeaderIngestFailures   = "X-Ingest-Failures"
)

// memoryCookies maps filter memory slots to the cookies that carry them
var memoryCookies = map[types.MemorySlot]string{
	types.MemorySlotStyle:        "lastStyle",
	types.MemorySlotBrand:        "lastBrand",
	types.MemorySlotAlcoholLimit: "lastLimit",
}

type beerHandler struct {
	uc           BeerUseCase
	secureCookie bool
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDuplicateKey):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func handleError(ctx context.Context, w http.ResponseWriter, err error) {
	errutil.HandleHTTP(ctx, w, err, statusOf(err))
}

func (h *beerHandler) newBeers(w http.ResponseWriter, r *http.Request) {
	count := h.uc.DefaultCount()
	if raw := strings.TrimSpace(r.URL.Query().Get("number")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			handleError(r.Context(), w, goerr.Wrap(model.ErrValidation, "number must be an integer", goerr.V("number", raw)))
			return
		}
		count = n
	}

	// A client disconnect must not leave a batch half persisted
	ctx := context.WithoutCancel(r.Context())
	report, err := h.uc.Ingest(ctx, count)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	w.Header().Set(HeaderIngestBatch, report.BatchID.String())
	w.Header().Set(HeaderIngestDuplicates, strconv.Itoa(len(report.Duplicates())))
	w.Header().Set(HeaderIngestFailures, strconv.Itoa(len(report.Failures())))
	writeJSON(ctx, w, http.StatusOK, report.Persisted())
}

func (h *beerHandler) savedBeers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		beers, err := h.uc.ListBeers(ctx)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, beers)
		return
	}

	id, err := parseID(raw)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	beer, err := h.uc.GetBeer(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, beer)
}

func (h *beerHandler) createBeer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft model.BeerDraft
	if err := decodeBody(w, r, &draft); err != nil {
		handleError(ctx, w, err)
		return
	}

	created, err := h.uc.CreateBeer(ctx, &draft)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusCreated, created)
}

func (h *beerHandler) updateBeer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	var patch model.BeerPatch
	if err := decodeBody(w, r, &patch); err != nil {
		handleError(ctx, w, err)
		return
	}

	updated, err := h.uc.UpdateBeer(ctx, id, &patch)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, updated)
}

func (h *beerHandler) deleteBeer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	deleted, err := h.uc.DeleteBeer(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, deleted)
}

// query serves a filtered read of dim. The explicit criterion comes from
// the param query parameter and the remembered one from the client's
// cookies. Updated memory is written back even when nothing matches.
func (h *beerHandler) query(dim types.Dimension, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		mem := readFilterMemory(r)
		beers, updated, err := h.uc.QueryByFilter(ctx, dim, r.URL.Query().Get(param), mem)
		h.writeFilterMemory(w, r, mem, updated)
		if err != nil {
			handleError(ctx, w, err)
			return
		}
		writeJSON(ctx, w, http.StatusOK, beers)
	}
}

func readFilterMemory(r *http.Request) model.FilterMemory {
	mem := model.FilterMemory{}
	for slot, name := range memoryCookies {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			continue
		}
		v, err := url.QueryUnescape(c.Value)
		if err != nil {
			v = c.Value
		}
		mem[slot] = v
	}
	return mem
}

func (h *beerHandler) writeFilterMemory(w http.ResponseWriter, r *http.Request, before, after model.FilterMemory) {
	for slot, name := range memoryCookies {
		prev, hadPrev := before.Get(slot)
		v, ok := after.Get(slot)
		if ok && hadPrev && prev == v {
			continue
		}
		if !ok && !hadPrev {
			continue
		}

		cookie := &http.Cookie{
			Name:     name,
			Value:    url.QueryEscape(v),
			Path:     "/",
			HttpOnly: true,
			Secure:   h.secureCookie || r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		}
		// a slot dropped from memory expires its cookie
		if !ok {
			cookie.MaxAge = -1
		}
		http.SetCookie(w, cookie)
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(model.ErrValidation, "id must be an integer", goerr.V(model.BeerIDKey, raw))
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return goerr.Wrap(model.ErrValidation, "request body is required")
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		return goerr.Wrap(model.ErrValidation, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}
