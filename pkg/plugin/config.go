package plugin

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"stellab.xyz/argus/internal/core"
)

// DecodeConfig maps the opaque per-plugin config block onto a typed config
// struct. Unknown keys are rejected so typos fail fast at init time.
func DecodeConfig(raw map[string]any, out any) error {
	if raw == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrPluginInitFailed, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	return nil
}
