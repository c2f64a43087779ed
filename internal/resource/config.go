package resource

import (
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/config"
	"github.com/GriffinCanCode/AgentOS/webbridge/internal/mime"
)

// NewFromConfig builds an OS resolver from the resources config section.
// opts are applied after the configured ones.
func NewFromConfig(cfg config.ResourceConfig, opts ...Option) (*Resolver, error) {
	base := []Option{
		WithRegistry(mime.NewRegistry(cfg.MimeOverrides)),
		WithHidden(cfg.Hidden...),
		WithSniffing(cfg.Sniff),
	}
	if cfg.IndexFile != "" {
		base = append(base, WithIndexFile(cfg.IndexFile))
	}
	return NewResolver(cfg.Root, append(base, opts...)...)
}
