package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the node configuration for errors.
func (c *NodeConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Binary) == "" {
		return fmt.Errorf("binary is required")
	}
	if strings.TrimSpace(c.Shell) == "" {
		return fmt.Errorf("shell is required")
	}
	if err := validateInstallScriptURL(c.InstallScriptURL); err != nil {
		return err
	}
	if len(c.PublicURLMarkers) == 0 {
		return fmt.Errorf("publicURLMarkers must not be empty")
	}
	for i, m := range c.PublicURLMarkers {
		if m == "" {
			return fmt.Errorf("publicURLMarkers[%d] is empty", i)
		}
	}
	if c.BaseDir == "" {
		return fmt.Errorf("baseDir is required")
	}
	return nil
}

func validateInstallScriptURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("installScriptURL %q is not a valid URL: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("installScriptURL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("installScriptURL %q has no host", raw)
	}
	return nil
}
