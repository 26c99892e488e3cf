package api

import (
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/quantly-lab/quantly/internal/strategy"
	"github.com/quantly-lab/quantly/internal/types"
)

// handleStrategies lists the rule catalog along with the JSON schema of a
// strategy config, so clients can build configuration UIs without
// hardcoding the parameter surface.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	kinds := strategy.Kinds()

	infos := make([]StrategyInfo, len(kinds))
	for i, kind := range kinds {
		infos[i] = StrategyInfo{
			Name:      kind.String(),
			Side:      string(kind.Side()),
			Indicator: string(kind.Indicator()),
		}
	}

	schema := jsonschema.Reflect(&types.StrategyConfig{})

	s.writeJSON(w, http.StatusOK, StrategiesResponse{
		Strategies:   infos,
		ConfigSchema: schema,
	})
}
