package web

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// FoodsResponse is the JSON response structure for the foods endpoint.
type FoodsResponse struct {
	Foods []FoodResponse `json:"foods"`
}

// FoodResponse is one food record.
type FoodResponse struct {
	Name         string          `json:"name"`
	ServingGrams decimal.Decimal `json:"servingGrams"`
	Calories     decimal.Decimal `json:"calories"`
	Protein      decimal.Decimal `json:"protein"`
	Fat          decimal.Decimal `json:"fat"`
	Carbs        decimal.Decimal `json:"carbs"`
}

// handleGetFoods handles GET requests to /api/foods.
//
// Query parameters:
//   - q: Optional substring to match against food names.
func (s *Server) handleGetFoods(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	records, err := s.foods.FindByName(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := &FoodsResponse{Foods: []FoodResponse{}}
	for _, rec := range records {
		resp.Foods = append(resp.Foods, FoodResponse{
			Name:         rec.Name,
			ServingGrams: rec.ServingGrams,
			Calories:     rec.Calories,
			Protein:      rec.Protein,
			Fat:          rec.Fat,
			Carbs:        rec.Carbs,
		})
	}
	writeJSONResponse(w, resp)
}
