package manifest

import "strings"

// frameworkNames maps well-known dependency names to framework display names.
var frameworkNames = map[Ecosystem]map[string]string{
	EcosystemNPM: {
		"react":          "React",
		"react-native":   "React Native",
		"next":           "Next.js",
		"vue":            "Vue",
		"nuxt":           "Nuxt",
		"@angular/core":  "Angular",
		"svelte":         "Svelte",
		"@sveltejs/kit":  "SvelteKit",
		"gatsby":         "Gatsby",
		"express":        "Express",
		"fastify":        "Fastify",
		"koa":            "Koa",
		"@hapi/hapi":     "Hapi",
		"@nestjs/core":   "NestJS",
		"graphql":        "GraphQL",
		"@apollo/server": "Apollo",
		"apollo-server":  "Apollo",
		"@apollo/client": "Apollo",
		"electron":       "Electron",
		"commander":      "Commander",
		"yargs":          "Yargs",
	},
	EcosystemGo: {
		"github.com/gin-gonic/gin":      "Gin",
		"github.com/labstack/echo/v4":   "Echo",
		"github.com/gofiber/fiber/v2":   "Fiber",
		"github.com/go-chi/chi/v5":      "Chi",
		"github.com/gorilla/mux":        "Gorilla Mux",
		"github.com/spf13/cobra":        "Cobra",
		"github.com/urfave/cli/v2":      "urfave/cli",
		"google.golang.org/grpc":        "gRPC",
		"github.com/99designs/gqlgen":   "GraphQL",
		"github.com/graphql-go/graphql": "GraphQL",
	},
	EcosystemPyPI: {
		"django":     "Django",
		"flask":      "Flask",
		"fastapi":    "FastAPI",
		"tornado":    "Tornado",
		"graphene":   "GraphQL",
		"strawberry": "GraphQL",
		"click":      "Click",
		"typer":      "Typer",
		"pytorch":    "PyTorch",
		"torch":      "PyTorch",
		"tensorflow": "TensorFlow",
	},
	EcosystemCargo: {
		"actix-web":     "Actix",
		"axum":          "Axum",
		"rocket":        "Rocket",
		"tokio":         "Tokio",
		"clap":          "Clap",
		"async-graphql": "GraphQL",
		"juniper":       "GraphQL",
		"tauri":         "Tauri",
		"bevy":          "Bevy",
		"leptos":        "Leptos",
		"yew":           "Yew",
		"tonic":         "gRPC",
		"warp":          "Warp",
	},
	EcosystemPub: {
		"flutter":      "Flutter",
		"flutter_bloc": "Bloc",
		"provider":     "Provider",
		"riverpod":     "Riverpod",
	},
}

// Frameworks returns the framework names implied by the non-dev dependencies,
// in dependency order without duplicates.
func (m *Manifest) Frameworks() []string {
	names := frameworkNames[m.Ecosystem]
	var out []string
	seen := make(map[string]bool)
	for _, d := range m.Dependencies {
		if d.Dev {
			continue
		}
		fw, ok := names[strings.ToLower(d.Name)]
		if ok && !seen[fw] {
			seen[fw] = true
			out = append(out, fw)
		}
	}
	return out
}
