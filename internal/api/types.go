package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

type FormatID struct {
	AgentURL string `json:"agent_url" yaml:"agent_url"`
	ID       string `json:"id" yaml:"id"`
}

type BrandManifest struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name,omitempty" yaml:"name"`
}

// Package line item for create_media_buy
type PackageRequest struct {
	BuyerRef        string     `json:"buyer_ref" yaml:"buyer_ref"`
	ProductID       string     `json:"product_id" yaml:"product_id"`
	PricingOptionID string     `json:"pricing_option_id" yaml:"pricing_option_id"`
	FormatIDs       []FormatID `json:"format_ids" yaml:"format_ids"`
	Budget          float64    `json:"budget" yaml:"budget"`
	BidPrice        float64    `json:"bid_price" yaml:"bid_price"`
	Pacing          string     `json:"pacing,omitempty" yaml:"pacing"`
}

// Request body for create_media_buy
type CreateMediaBuyRequest struct {
	BuyerRef      string           `json:"buyer_ref"`
	BrandManifest BrandManifest    `json:"brand_manifest"`
	Packages      []PackageRequest `json:"packages"`
	StartTime     string           `json:"start_time"`
	EndTime       string           `json:"end_time"`
}

// CreatedPackage is a package record echoed back by the sales agent.
type CreatedPackage struct {
	PackageID string `json:"package_id"`
	BuyerRef  string `json:"buyer_ref,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Status    string `json:"status,omitempty"`
}

// CreateMediaBuyResponse is the wire form of the create_media_buy result union.
// A success populates MediaBuyID; a failure populates Errors.
type CreateMediaBuyResponse struct {
	MediaBuyID       string           `json:"media_buy_id,omitempty"`
	BuyerRef         string           `json:"buyer_ref,omitempty"`
	CreativeDeadline string           `json:"creative_deadline,omitempty"`
	Packages         []CreatedPackage `json:"packages,omitempty"`
	PackageIDs       []string         `json:"package_ids,omitempty"`
	Message          string           `json:"message,omitempty"`
	Errors           []Error          `json:"errors,omitempty"`
}

// PackageCount reports created packages, preferring full records over bare IDs.
func (r *CreateMediaBuyResponse) PackageCount() int {
	if len(r.Packages) > 0 {
		return len(r.Packages)
	}
	return len(r.PackageIDs)
}

// Error is a single AdCP error descriptor.
type Error struct {
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare string message.
func (e *Error) UnmarshalJSON(data []byte) error {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		*e = Error{Message: msg}
		return nil
	}
	type plain Error
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Error(p)
	return nil
}

func (e Error) String() string {
	var b strings.Builder
	if e.Code != "" {
		fmt.Fprintf(&b, "%s: ", e.Code)
	}
	b.WriteString(e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	return b.String()
}

// ErrorResponse is the single error body returned by the reference sales agent.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AsErrors converts the single error body into AdCP error descriptors.
func (r ErrorResponse) AsErrors() []Error {
	if r.Error == "" {
		return nil
	}
	msg := r.Error
	if r.Details != "" {
		msg += ": " + r.Details
	}
	return []Error{{Code: r.Code, Message: msg}}
}

// DecodeRejection reads a business error body in either the errors-array
// form or the single error form. It returns nil when neither is present.
func DecodeRejection(data []byte) []Error {
	var union CreateMediaBuyResponse
	if err := json.Unmarshal(data, &union); err == nil && len(union.Errors) > 0 {
		return union.Errors
	}
	var single ErrorResponse
	if err := json.Unmarshal(data, &single); err == nil {
		return single.AsErrors()
	}
	return nil
}
