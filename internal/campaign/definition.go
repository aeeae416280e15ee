package campaign

import (
	"os"

	"adte.com/adte/buyer-agent/internal/api"
	"adte.com/adte/buyer-agent/internal/errs"

	"gopkg.in/yaml.v3"
)

const CreativeAgentURL = "https://creative.adcontextprotocol.org"

// Definition describes what to buy. The flight dates are not part of it;
// they are computed at run time.
type Definition struct {
	BuyerRef string               `yaml:"buyer_ref"`
	Brand    api.BrandManifest    `yaml:"brand_manifest"`
	Packages []api.PackageRequest `yaml:"packages"`
}

// DefaultDefinition is the reference campaign used against the public test agent.
func DefaultDefinition() Definition {
	return Definition{
		BuyerRef: "summer_campaign_2025",
		Brand: api.BrandManifest{
			Name: "Nike",
			URL:  "https://nike.com",
		},
		Packages: []api.PackageRequest{
			{
				BuyerRef:        "ctv_package",
				ProductID:       "prod_d979b543",
				PricingOptionID: "cpm_usd_auction",
				FormatIDs: []api.FormatID{
					{AgentURL: CreativeAgentURL, ID: "display_300x250_image"},
				},
				Budget:   30000,
				BidPrice: 5.00,
			},
			{
				BuyerRef:        "audio_package",
				ProductID:       "prod_e8fd6012",
				PricingOptionID: "cpm_usd_auction",
				FormatIDs: []api.FormatID{
					{AgentURL: CreativeAgentURL, ID: "display_300x250_html"},
				},
				Budget:   20000,
				BidPrice: 4.50,
			},
		},
	}
}

// LoadDefinition reads a campaign definition from a YAML file.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, errs.Wrapf(err, "read campaign file %s", path)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return Definition{}, errs.Wrapf(err, "parse campaign file %s", path)
	}
	return def, nil
}
