package extractor

import (
	"log/slog"

	"botdl/internal/config"
	"botdl/internal/consts"
	"botdl/internal/entity"
)

// Registry maps each platform to its ordered strategy chain. Built once at
// startup; Resolve is read-only afterwards.
type Registry struct {
	chains map[entity.Platform][]Strategy
	audio  []Strategy
}

// NewRegistry builds the production strategy chains.
func NewRegistry(log *slog.Logger, cfg *config.Config) *Registry {
	fallback := func(prefix, tmpl, userAgent string) Strategy {
		return NewYTdlp(log, cfg, YTdlpOptions{
			Name:       consts.StrategyYTdlp,
			DirPrefix:  prefix,
			OutputTmpl: tmpl,
			UserAgent:  userAgent,
		})
	}

	return &Registry{
		chains: map[entity.Platform][]Strategy{
			entity.PlatformYouTube: {
				NewYouTube(log, cfg),
				fallback("yt", "", ""),
			},
			entity.PlatformInstagram: {
				NewInstagram(log, cfg),
				fallback("ig", "ig_%(id)s.%(ext)s", ""),
			},
			entity.PlatformTwitter: {
				fallback("tw", "twitter_%(id)s.%(ext)s", ""),
			},
			entity.PlatformFacebook: {
				fallback("fb", "fb_%(id)s.%(ext)s", ""),
			},
			entity.PlatformTikTok: {
				fallback("tt", "", consts.DesktopUserAgent),
			},
		},
		audio: []Strategy{NewMusic(log, cfg)},
	}
}

// Register replaces the chain for a platform. Used by tests and for
// platform-specific overrides.
func (r *Registry) Register(platform entity.Platform, strategies ...Strategy) {
	if r.chains == nil {
		r.chains = make(map[entity.Platform][]Strategy)
	}

	r.chains[platform] = strategies
}

// RegisterAudio replaces the audio chain.
func (r *Registry) RegisterAudio(strategies ...Strategy) {
	r.audio = strategies
}

// Resolve returns the ordered strategy chain for a request. Unsupported
// platforms resolve to nil.
func (r *Registry) Resolve(req *entity.Request) []Strategy {
	if req.AudioOnly {
		return r.audio
	}

	return r.chains[req.Platform]
}
