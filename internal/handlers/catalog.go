package handlers

import (
	"net/http"
	"strings"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

// parseFilter reads ?q=, ?brand= (repeatable or comma separated),
// ?min_price= and ?max_price= from the query string
func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{Search: strings.TrimSpace(q.Get("q"))}

	for _, v := range q["brand"] {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				f.Brands = append(f.Brands, b)
			}
		}
	}

	if v := q.Get("min_price"); v != "" {
		m, err := models.ParseMoney(v)
		if err != nil {
			return f, BadRequest("Invalid min_price: " + v)
		}
		f.MinPrice = &m
	}
	if v := q.Get("max_price"); v != "" {
		m, err := models.ParseMoney(v)
		if err != nil {
			return f, BadRequest("Invalid max_price: " + v)
		}
		f.MaxPrice = &m
	}
	return f, nil
}

// handleGetCatalog lists the categories in build order
func (h *Handlers) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	respondOK(w, newCatalogResponse(h.Catalog))
}

// handleGetCategoryParts lists the parts of a category that fit the session's
// platform, narrowed by the query filter. Brands and max price describe the
// compatible parts before filtering.
func (h *Handlers) handleGetCategoryParts(w http.ResponseWriter, r *http.Request) {
	key, err := categoryParam(r)
	if err != nil {
		respondError(w, err)
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var resp PartsResponse
	err = h.Sessions.FromRequest(w, r).Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		compatible, err := store.Parts(key)
		if err != nil {
			return err
		}
		resp = PartsResponse{
			Category: key,
			Parts:    filter.Apply(compatible),
			Brands:   catalog.Brands(compatible),
			MaxPrice: catalog.MaxPrice(compatible),
			Locked:   store.Locked(key),
		}
		return nil
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, resp)
}
