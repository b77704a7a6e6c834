package payments

import (
	"fmt"
	"sort"
)

type PaymentManager struct {
	factories map[string]Factory
}

func NewPaymentManager() *PaymentManager {
	return &PaymentManager{factories: make(map[string]Factory)}
}

func (m *PaymentManager) RegisterGateway(name string, factory Factory) {
	m.factories[name] = factory
}

// Factory returns the constructor registered for method.
func (m *PaymentManager) Factory(method string) (Factory, error) {
	factory, ok := m.factories[method]
	if !ok {
		return nil, fmt.Errorf("gateway not registered: %s", method)
	}
	return factory, nil
}

func (m *PaymentManager) Methods() []string {
	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
