package factory

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/mikey/phishguard/internal/adapters/filter"
	"github.com/mikey/phishguard/internal/adapters/httpapi"
	"github.com/mikey/phishguard/internal/config"
	"github.com/mikey/phishguard/internal/ports"
	"github.com/mikey/phishguard/internal/textproc"
	"go.uber.org/zap"
)

// FilterFactory creates email filters based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	detector      ports.Detector
	textProcessor *textproc.TextProcessor
	out           io.Writer
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	detector ports.Detector,
	textProcessor *textproc.TextProcessor,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		detector:      detector,
		textProcessor: textProcessor,
		out:           os.Stdout,
	}
}

// CreateEmailFilter creates an email filter based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterCfg, err := f.cfg.GetFilter()
	if err != nil {
		return nil, err
	}

	switch filterCfg.Type {
	case "http":
		serverCfg, err := f.cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return httpapi.NewServer(serverCfg, f.detector, f.logger), nil
	case "postfix":
		return filter.NewPostfixFilter(f.detector, f.textProcessor, f.logger, filterCfg), nil
	case "cli":
		return filter.NewCliFilter(
			f.detector,
			f.textProcessor,
			f.logger,
			f.out,
			f.cfg.GetBool("cli.verbose"),
			filterCfg.MaxBodySize,
		), nil
	default:
		return nil, errors.Newf("unsupported filter type: %s", filterCfg.Type)
	}
}
