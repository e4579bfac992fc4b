package config

import "strings"

type App struct {
	Addr     string
	BasePath string
	// Empty means any origin.
	Origins []string
}

func NewApp() *App {
	var origins []string
	for _, o := range strings.Split(lookupString("APP_CORS_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return &App{
		Addr:     lookupString("APP_ADDR", ":8080"),
		BasePath: strings.TrimSuffix(lookupString("APP_BASE_PATH", ""), "/"),
		Origins:  origins,
	}
}
