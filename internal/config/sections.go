package config

import (
	"github.com/caarlos0/env/v11"
)

// Section is one config struct parsed for display. Err holds whatever
// env.Parse rejected; the fields it could read are still set.
type Section struct {
	Name  string
	Value any
	Err   error
}

// Sections parses every config struct without exiting on bad or missing
// values, so the configuration can be inspected while it is broken.
func Sections() []Section {
	app := &AppConfig{}
	appErr := env.Parse(app)
	app.RuntimePath = resolveRuntimePath(app.RuntimePath)

	sections := []Section{{Name: "app", Value: app, Err: appErr}}
	for _, s := range []struct {
		name  string
		value any
	}{
		{"news", &NewsConfig{}},
		{"memory", &MemoryConfig{}},
		{"retrieval", &RetrievalConfig{}},
		{"llm", &LLMConfig{}},
		{"index", &IndexConfig{}},
		{"api", &APIConfig{}},
	} {
		sections = append(sections, Section{Name: s.name, Value: s.value, Err: env.Parse(s.value)})
	}

	if app.IsTelegramSelected() {
		tg := &TelegramConfig{}
		sections = append(sections, Section{Name: "telegram", Value: tg, Err: env.Parse(tg)})
	}
	return sections
}
