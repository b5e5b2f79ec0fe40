package launch

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

// Provider is an AI assistant reachable through a prompt URL.
type Provider struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	PromptURL string `yaml:"prompt_url" json:"promptUrl"`
	VoiceURL  string `yaml:"voice_url,omitempty" json:"voiceUrl,omitempty"`
	// VoiceOnly providers ignore the prompt and open their voice interface.
	VoiceOnly bool   `yaml:"voice_only,omitempty" json:"voiceOnly,omitempty"`
	Icon      string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Ask forwards prompt to provider. A blank prompt yields ErrEmptyInput.
func (d *Dispatcher) Ask(p Provider, prompt string, mode domain.OpenMode) (Action, error) {
	if strings.TrimSpace(prompt) == "" {
		return Action{}, domain.ErrEmptyInput
	}
	if p.VoiceOnly {
		return d.Voice(p, mode)
	}
	if p.PromptURL == "" {
		return Action{}, fmt.Errorf("%w: provider %s has no prompt url", domain.ErrInvalidURL, p.ID)
	}
	return d.Dispatch(p.PromptURL+EscapeComponent(prompt), mode)
}

// Voice opens the provider's voice interface.
func (d *Dispatcher) Voice(p Provider, mode domain.OpenMode) (Action, error) {
	target := p.VoiceURL
	if target == "" {
		target = p.PromptURL
	}
	if target == "" {
		return Action{}, fmt.Errorf("%w: provider %s has no voice url", domain.ErrUnsupported, p.ID)
	}
	return d.Dispatch(target, mode)
}
