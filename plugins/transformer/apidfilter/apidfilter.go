// Package apidfilter implements a packet filter transformer that keeps or
// drops packets by APID before decommutation.
package apidfilter

import (
	"context"
	"fmt"

	"stellab.xyz/argus/internal/ccsds"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// Config represents APID filter configuration. Include and Exclude are
// mutually exclusive.
type Config struct {
	Include []uint16 `mapstructure:"include"`
	Exclude []uint16 `mapstructure:"exclude"`
}

// ApidFilterTransformer keeps or removes packets based on their APID.
type ApidFilterTransformer struct {
	name    string
	include map[uint16]struct{}
	exclude map[uint16]struct{}
}

// NewApidFilterTransformer creates a new APID filter.
func NewApidFilterTransformer() plugin.Transformer {
	return &ApidFilterTransformer{name: "apid_filter"}
}

// Name returns the plugin name.
func (t *ApidFilterTransformer) Name() string {
	return t.name
}

// Init initializes the filter with configuration.
func (t *ApidFilterTransformer) Init(config map[string]any) error {
	var cfg Config
	if err := plugin.DecodeConfig(config, &cfg); err != nil {
		return err
	}
	if len(cfg.Include) > 0 && len(cfg.Exclude) > 0 {
		return fmt.Errorf("specify either 'include' or 'exclude', not both")
	}
	if len(cfg.Include) > 0 {
		t.include = toSet(cfg.Include)
	}
	if len(cfg.Exclude) > 0 {
		t.exclude = toSet(cfg.Exclude)
	}
	return nil
}

// Transform drops packets outside the allow-list or inside the block-list.
func (t *ApidFilterTransformer) Transform(ctx context.Context, ds *telemetry.Dataset) error {
	if t.include == nil && t.exclude == nil {
		return nil
	}

	kept := make([]*ccsds.Packet, 0, len(ds.Packets))
	for _, pkt := range ds.Packets {
		if t.keep(pkt.APID()) {
			kept = append(kept, pkt)
		}
	}
	ds.Packets = kept
	return nil
}

func (t *ApidFilterTransformer) keep(apid uint16) bool {
	if t.include != nil {
		_, ok := t.include[apid]
		return ok
	}
	_, blocked := t.exclude[apid]
	return !blocked
}

func toSet(apids []uint16) map[uint16]struct{} {
	set := make(map[uint16]struct{}, len(apids))
	for _, apid := range apids {
		set[apid] = struct{}{}
	}
	return set
}
