package internal

import (
	"github.com/kcmvp/archunit"
	"testing"
)

func TestArchitecture(t *testing.T) {
	domain := archunit.Packages("domain", []string{".../internal/domain/..."})
	adapters := archunit.Packages("adapters", []string{".../internal/adapters/..."})
	config := archunit.Packages("config", []string{".../internal/config"})

	// Domain should not depend on adapters or on how the process is configured
	if err := domain.ShouldNotReferLayers(adapters); err != nil {
		t.Errorf("Architecture violation: Domain depends on Adapters: %v", err)
	}
	if err := domain.ShouldNotReferLayers(config); err != nil {
		t.Errorf("Architecture violation: Domain depends on Config: %v", err)
	}
}

func TestSelectorPackage(t *testing.T) {
	selector := archunit.Packages("selector", []string{".../internal/domain/selector"})
	if len(selector.Packages()) == 0 {
		t.Error("No selector package found in domain")
	}
}
