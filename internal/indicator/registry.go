package indicator

import (
	"sync"

	"github.com/quantly-lab/quantly/internal/types"
	"github.com/quantly-lab/quantly/pkg/errors"
)

// Registry manages the available indicator calculators.
type Registry interface {
	RegisterCalculator(calculator Calculator) error
	GetCalculator(name types.IndicatorType) (Calculator, error)
	ListCalculators() []types.IndicatorType
}

// RegistryV1 manages the available indicator calculators.
type RegistryV1 struct {
	calculators map[types.IndicatorType]Calculator
	mu          sync.RWMutex
}

// NewRegistry creates a registry with every built-in calculator registered.
func NewRegistry() Registry {
	registry := &RegistryV1{
		calculators: make(map[types.IndicatorType]Calculator),
		mu:          sync.RWMutex{},
	}

	for _, calculator := range []Calculator{
		NewRSI(),
		NewMACD(),
		NewSMA(),
		NewEMA(),
		NewWMA(),
		NewBollingerBands(),
		NewATR(),
		NewStochastic(),
		NewADX(),
		NewVWAP(),
		NewOBV(),
		NewParabolicSAR(),
	} {
		// Built-in names are unique, registration cannot fail here.
		_ = registry.RegisterCalculator(calculator)
	}

	return registry
}

// RegisterCalculator adds a calculator to the registry.
func (r *RegistryV1) RegisterCalculator(calculator Calculator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := calculator.Name()
	if _, exists := r.calculators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "calculator %s already registered", name)
	}

	r.calculators[name] = calculator

	return nil
}

// GetCalculator retrieves a calculator by indicator family.
func (r *RegistryV1) GetCalculator(name types.IndicatorType) (Calculator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	calculator, exists := r.calculators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "calculator %s not found", name)
	}

	return calculator, nil
}

// ListCalculators returns the names of all registered calculators.
func (r *RegistryV1) ListCalculators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.calculators))
	for name := range r.calculators {
		names = append(names, name)
	}

	return names
}
