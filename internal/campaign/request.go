package campaign

import (
	"fmt"
	"net/url"

	"adte.com/adte/buyer-agent/internal/api"
)

// ValidationError represents a request that was rejected locally and never sent.
type ValidationError struct {
	Message string
	Code    string
	Field   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

var validPacing = map[string]bool{"even": true, "asap": true, "frontloaded": true}

// BuildRequest assembles a create_media_buy payload from a computed window.
func BuildRequest(window Window, buyerRef string, brand api.BrandManifest, packages []api.PackageRequest) (*api.CreateMediaBuyRequest, error) {
	if buyerRef == "" {
		return nil, ValidationError{Message: "buyer_ref is required", Code: "MISSING_REQUIRED_FIELD", Field: "buyer_ref"}
	}
	if err := validateBrand(brand); err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, ValidationError{Message: "At least one package is required", Code: "MISSING_PACKAGES", Field: "packages"}
	}
	for i := range packages {
		if err := validatePackage(i, &packages[i]); err != nil {
			return nil, err
		}
	}
	if !window.End.After(window.Start) {
		return nil, ValidationError{Message: "end_time must be after start_time", Code: "INVALID_DATE_RANGE", Field: "end_time"}
	}

	pkgs := make([]api.PackageRequest, len(packages))
	copy(pkgs, packages)

	return &api.CreateMediaBuyRequest{
		BuyerRef:      buyerRef,
		BrandManifest: brand,
		Packages:      pkgs,
		StartTime:     window.StartTime(),
		EndTime:       window.EndTime(),
	}, nil
}

func validateBrand(brand api.BrandManifest) error {
	if brand.URL == "" {
		return ValidationError{Message: "brand_manifest.url is required", Code: "MISSING_REQUIRED_FIELD", Field: "brand_manifest.url"}
	}
	u, err := url.ParseRequestURI(brand.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Message: "brand_manifest.url must be a valid absolute URL", Code: "INVALID_URL", Field: "brand_manifest.url"}
	}
	return nil
}

func validatePackage(i int, pkg *api.PackageRequest) error {
	field := func(name string) string { return fmt.Sprintf("packages[%d].%s", i, name) }

	if pkg.ProductID == "" {
		return ValidationError{Message: "product_id is required", Code: "MISSING_REQUIRED_FIELD", Field: field("product_id")}
	}
	if pkg.PricingOptionID == "" {
		return ValidationError{Message: "pricing_option_id is required", Code: "MISSING_REQUIRED_FIELD", Field: field("pricing_option_id")}
	}
	if pkg.Budget <= 0 {
		return ValidationError{Message: "Budget must be positive", Code: "INVALID_BUDGET", Field: field("budget")}
	}
	if pkg.BidPrice <= 0 {
		return ValidationError{Message: "Bid price must be positive", Code: "INVALID_BID_PRICE", Field: field("bid_price")}
	}
	if pkg.Pacing != "" && !validPacing[pkg.Pacing] {
		return ValidationError{Message: "Invalid pacing value: " + pkg.Pacing, Code: "INVALID_PACING", Field: field("pacing")}
	}
	return nil
}
