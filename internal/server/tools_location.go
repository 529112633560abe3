package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"fintel/internal/intel"
	"fintel/internal/location"
)

func (s *Server) registerLocationTools() {
	geocodeTool := mcp.NewTool("geocode_address",
		mcp.WithDescription("[LOCATION] Convert an address to geographic coordinates"),
		mcp.WithString("address", mcp.Required(), mcp.Description("Full address to geocode")),
	)
	s.addTool(geocodeTool, s.handleGeocodeAddress)

	reverseTool := mcp.NewTool("reverse_geocode_coordinates",
		mcp.WithDescription("[LOCATION] Convert coordinates to the nearest address"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude coordinate")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude coordinate")),
	)
	s.addTool(reverseTool, s.handleReverseGeocode)

	cityTool := mcp.NewTool("search_locations_by_city",
		mcp.WithDescription("[LOCATION] Find businesses of a given type in a Romanian city"),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name (e.g., 'Cluj-Napoca')")),
		mcp.WithString("business_type", mcp.Required(), mcp.Description("Business type to search for (e.g., 'restaurant', 'cafe')")),
	)
	s.addTool(cityTool, s.handleSearchCity)

	nearbyTool := mcp.NewTool("find_nearby_amenities",
		mcp.WithDescription("[LOCATION] Find amenities around a point, nearest first"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude coordinate")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude coordinate")),
		mcp.WithNumber("radius_meters", mcp.Description("Search radius in meters (default: 1000)")),
		mcp.WithString("amenity_type", mcp.Description("Place type filter (e.g., 'pharmacy', 'school', 'atm')")),
	)
	s.addTool(nearbyTool, s.handleNearbyAmenities)

	densityTool := mcp.NewTool("analyze_competitor_density",
		mcp.WithDescription("[LOCATION] Analyze competitor density and market saturation around a point"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude coordinate")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude coordinate")),
		mcp.WithString("business_type", mcp.Required(), mcp.Description("Business type to measure (e.g., 'coffee shop')")),
		mcp.WithNumber("radius_km", mcp.Description("Analysis radius in kilometers (default: 2)")),
	)
	s.addTool(densityTool, s.handleCompetitorDensity)

	accessTool := mcp.NewTool("calculate_accessibility_score",
		mcp.WithDescription("[LOCATION] Score how accessible a location is from its nearby amenities"),
		mcp.WithNumber("latitude", mcp.Required(), mcp.Description("Latitude coordinate")),
		mcp.WithNumber("longitude", mcp.Required(), mcp.Description("Longitude coordinate")),
	)
	s.addTool(accessTool, s.handleAccessibilityScore)

	matrixTool := mcp.NewTool("get_travel_matrix",
		mcp.WithDescription("[LOCATION] Calculate distances and travel times between origins and destinations"),
		mcp.WithArray("origins", mcp.Required(), mcp.Description("Origin addresses or 'lat,lng' coordinates"), mcp.WithStringItems()),
		mcp.WithArray("destinations", mcp.Required(), mcp.Description("Destination addresses or 'lat,lng' coordinates"), mcp.WithStringItems()),
		mcp.WithString("mode", mcp.Description("Travel mode: driving, walking, bicycling, or transit (default: driving)")),
	)
	s.addTool(matrixTool, s.handleTravelMatrix)
}

type geocoded struct {
	OriginalAddress string `json:"original_address"`
	location.GeocodeResult
}

type reverseGeocoded struct {
	Coordinates location.LatLng `json:"coordinates"`
	location.GeocodeResult
}

// coordinateArgs extracts the latitude/longitude pair shared by the
// point-based tools. Range validation happens in the service.
func coordinateArgs(request mcp.CallToolRequest) (float64, float64, error) {
	lat, err := request.RequireFloat("latitude")
	if err != nil {
		return 0, 0, err
	}
	lng, err := request.RequireFloat("longitude")
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func (s *Server) handleGeocodeAddress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	address, err := request.RequireString("address")
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.Geocode(ctx, address)
	if err != nil {
		return errorResult(err), nil
	}
	data := geocoded{OriginalAddress: address, GeocodeResult: result}
	return successResult("Address geocoded successfully", data), nil
}

func (s *Server) handleReverseGeocode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lng, err := coordinateArgs(request)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return errorResult(err), nil
	}
	data := reverseGeocoded{Coordinates: location.LatLng{Lat: lat, Lng: lng}, GeocodeResult: result}
	return successResult("Coordinates reverse geocoded", data), nil
}

func (s *Server) handleSearchCity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := request.RequireString("city")
	if err != nil {
		return errorResult(err), nil
	}
	businessType, err := request.RequireString("business_type")
	if err != nil {
		return errorResult(err), nil
	}

	result, err := s.svc.SearchCity(ctx, city, businessType)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(fmt.Sprintf("Found %d locations", result.TotalFound), result), nil
}

func (s *Server) handleNearbyAmenities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lng, err := coordinateArgs(request)
	if err != nil {
		return errorResult(err), nil
	}
	radius := request.GetInt("radius_meters", intel.DefaultNearbyRadiusM)
	amenityType := request.GetString("amenity_type", "")

	result, err := s.svc.FindNearbyAmenities(ctx, lat, lng, radius, amenityType)
	if err != nil {
		return errorResult(err), nil
	}

	message := fmt.Sprintf("Found %d amenities nearby", result.TotalFound)
	if amenityType != "" {
		message = fmt.Sprintf("Found %d %ss nearby", result.TotalFound, amenityType)
	}
	return successResult(message, result), nil
}

func (s *Server) handleCompetitorDensity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lng, err := coordinateArgs(request)
	if err != nil {
		return errorResult(err), nil
	}
	businessType, err := request.RequireString("business_type")
	if err != nil {
		return errorResult(err), nil
	}
	radius := request.GetFloat("radius_km", intel.DefaultDensityRadiusKM)

	report, err := s.svc.CompetitorDensity(ctx, lat, lng, businessType, radius)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult("Competitor density analyzed", report), nil
}

func (s *Server) handleAccessibilityScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, lng, err := coordinateArgs(request)
	if err != nil {
		return errorResult(err), nil
	}

	access, err := s.svc.AccessibilityScore(ctx, lat, lng)
	if err != nil {
		return errorResult(err), nil
	}
	message := fmt.Sprintf("Accessibility score: %g%% (%s)", access.Score, access.Rating)
	return successResult(message, access), nil
}

func (s *Server) handleTravelMatrix(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	origins, err := request.RequireStringSlice("origins")
	if err != nil {
		return errorResult(err), nil
	}
	destinations, err := request.RequireStringSlice("destinations")
	if err != nil {
		return errorResult(err), nil
	}
	mode := request.GetString("mode", "driving")

	matrix, err := s.svc.TravelMatrix(ctx, origins, destinations, mode)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult("Distance matrix calculated", matrix), nil
}
