package airports

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

// Airport is one entry of the static lookup dataset. There is no live flight
// data integration; the list only needs to cover the corridors travelers
// actually fly.
type Airport struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

var airports = []Airport{
	{Code: "ADD", Name: "Addis Ababa Bole International", City: "Addis Ababa", Country: "Ethiopia"},
	{Code: "DIR", Name: "Dire Dawa International", City: "Dire Dawa", Country: "Ethiopia"},
	{Code: "MQX", Name: "Alula Aba Nega", City: "Mekelle", Country: "Ethiopia"},
	{Code: "BJR", Name: "Bahir Dar", City: "Bahir Dar", Country: "Ethiopia"},
	{Code: "JFK", Name: "John F. Kennedy International", City: "New York", Country: "United States"},
	{Code: "EWR", Name: "Newark Liberty International", City: "Newark", Country: "United States"},
	{Code: "IAD", Name: "Washington Dulles International", City: "Washington", Country: "United States"},
	{Code: "ORD", Name: "O'Hare International", City: "Chicago", Country: "United States"},
	{Code: "LAX", Name: "Los Angeles International", City: "Los Angeles", Country: "United States"},
	{Code: "SEA", Name: "Seattle-Tacoma International", City: "Seattle", Country: "United States"},
	{Code: "MSP", Name: "Minneapolis-Saint Paul International", City: "Minneapolis", Country: "United States"},
	{Code: "YYZ", Name: "Toronto Pearson International", City: "Toronto", Country: "Canada"},
	{Code: "LHR", Name: "London Heathrow", City: "London", Country: "United Kingdom"},
	{Code: "FRA", Name: "Frankfurt am Main", City: "Frankfurt", Country: "Germany"},
	{Code: "CDG", Name: "Charles de Gaulle", City: "Paris", Country: "France"},
	{Code: "AMS", Name: "Amsterdam Schiphol", City: "Amsterdam", Country: "Netherlands"},
	{Code: "ARN", Name: "Stockholm Arlanda", City: "Stockholm", Country: "Sweden"},
	{Code: "DXB", Name: "Dubai International", City: "Dubai", Country: "United Arab Emirates"},
	{Code: "DOH", Name: "Hamad International", City: "Doha", Country: "Qatar"},
	{Code: "IST", Name: "Istanbul Airport", City: "Istanbul", Country: "Turkey"},
	{Code: "JED", Name: "King Abdulaziz International", City: "Jeddah", Country: "Saudi Arabia"},
	{Code: "NBO", Name: "Jomo Kenyatta International", City: "Nairobi", Country: "Kenya"},
	{Code: "TLV", Name: "Ben Gurion", City: "Tel Aviv", Country: "Israel"},
	{Code: "PEK", Name: "Beijing Capital International", City: "Beijing", Country: "China"},
	{Code: "GRU", Name: "São Paulo-Guarulhos International", City: "São Paulo", Country: "Brazil"},
}

// Search returns airports whose code, city or name contains q,
// case-insensitively. Without q the full dataset is returned.
func Search(q string) []Airport {
	if q == "" {
		out := make([]Airport, len(airports))
		copy(out, airports)
		return out
	}

	q = strings.ToLower(q)
	var out []Airport
	for _, a := range airports {
		if strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.City), q) ||
			strings.Contains(strings.ToLower(a.Name), q) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Handler serves the static airport lookup.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Search handles GET /api/airports?q=.
func (h *Handler) Search(c echo.Context) error {
	return c.JSON(http.StatusOK, Search(c.QueryParam("q")))
}
