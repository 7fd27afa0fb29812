package classifier

import (
	"filewise/internal/config"
	"filewise/internal/logger"
	"filewise/internal/port"
)

// New builds the upstream classifier from config: the primary endpoint alone,
// or primary then secondary behind a FallbackClassifier.
func New(cfg *config.ClassifierConfig, log *logger.Logger) port.Classifier {
	primary := NewClient(&cfg.Primary)
	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary
	}
	secondary := NewClient(secondaryCfg)
	return NewFallbackClassifier(
		[]port.Classifier{primary, secondary},
		[]string{primary.Name(), secondary.Name()},
		log,
	)
}
