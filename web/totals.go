package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/JamesCliffordSpratt/macros-sub001/cache"
	"github.com/JamesCliffordSpratt/macros-sub001/ledger"
)

// TotalsResponse is the JSON response structure for the totals endpoint.
type TotalsResponse struct {
	Breakdown []IDTotalsResponse `json:"breakdown"`
	Total     ledger.Totals      `json:"total"`
}

// IDTotalsResponse is one ledger identifier's aggregation.
type IDTotalsResponse struct {
	ID    string        `json:"id"`
	Rows  []RowResponse `json:"rows"`
	Total ledger.Totals `json:"total"`
}

// RowResponse is one food reference's contribution to a ledger.
type RowResponse struct {
	Food       string           `json:"food"`
	Meal       string           `json:"meal,omitempty"`
	Grams      *decimal.Decimal `json:"grams,omitempty"`
	Macros     ledger.Totals    `json:"macros"`
	Unresolved bool             `json:"unresolved,omitempty"`
}

// handleGetTotals handles GET requests to /api/totals.
//
// Query parameters:
//   - ids: Semicolon-separated ledger identifiers. An identifier may itself
//     be compound ("2024-05-01,2024-05-02"), in which case its constituents
//     each get a breakdown entry and the total combines them.
func (s *Server) handleGetTotals(w http.ResponseWriter, r *http.Request) {
	ids := queryIdentifiers(r)
	if len(ids) == 0 {
		http.Error(w, "missing ids parameter", http.StatusBadRequest)
		return
	}

	result, err := s.coordinator.Results(r.Context(), ids)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSONResponse(w, NewTotalsResponse(result))
}

// NewTotalsResponse converts a cache.Result to its JSON shape. The CLI's
// --json output shares it so both surfaces stay in sync.
func NewTotalsResponse(result cache.Result) *TotalsResponse {
	resp := &TotalsResponse{Total: result.Aggregate}
	for _, br := range result.Breakdown {
		id := IDTotalsResponse{ID: br.ID, Total: br.Total}
		for _, row := range br.Rows {
			id.Rows = append(id.Rows, RowResponse{
				Food:       row.Food,
				Meal:       row.Meal,
				Grams:      row.Grams,
				Macros:     row.Macros,
				Unresolved: row.Unresolved,
			})
		}
		resp.Breakdown = append(resp.Breakdown, id)
	}
	return resp
}
