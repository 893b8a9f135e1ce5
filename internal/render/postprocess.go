package render

import (
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var disableConfigDir sync.Once

func pdfConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Finalize copies the printed PDF at rawPath to outPath with the given
// document properties and returns its page count.
func Finalize(rawPath, outPath string, props map[string]string) (int, error) {
	conf := pdfConfig()
	if err := api.AddPropertiesFile(rawPath, outPath, props, conf); err != nil {
		return 0, fmt.Errorf("set pdf properties: %w", err)
	}
	pages, err := api.PageCountFile(outPath)
	if err != nil {
		return 0, fmt.Errorf("count pages: %w", err)
	}
	return pages, nil
}
