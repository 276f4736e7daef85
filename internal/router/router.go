package router

import (
	"database/sql"
	"net/http"
	"os"

	"dairy-herd-service/internal/adapters/billing/plans"
	mem "dairy-herd-service/internal/adapters/storage/memory"
	pg "dairy-herd-service/internal/adapters/storage/postgres"
	lite "dairy-herd-service/internal/adapters/storage/sqlite"
	"dairy-herd-service/internal/domain/animals"
	"dairy-herd-service/internal/domain/breeding"
	"dairy-herd-service/internal/domain/categories"
	"dairy-herd-service/internal/domain/members"
	"dairy-herd-service/internal/domain/settings"
	"dairy-herd-service/internal/middleware"
	"dairy-herd-service/internal/ports/auth"

	_ "dairy-herd-service/docs" // registro del swagger spec

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, decide por env.
	DB *sql.DB

	// Opcional: gate de features por plan para invitaciones.
	Plans *plans.Resolver
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		animalRepo   animals.Repository
		categoryRepo categories.Repository
		settingsRepo settings.Repository
		memberRepo   members.Repository
		eventRepo    breeding.EventRepository
	)

	// DB_DSN => Postgres. SQLITE_PATH => archivo local. Nada => in-memory.
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	switch {
	case db != nil:
		animalRepo = pg.NewAnimalsRepo(db)
		categoryRepo = pg.NewCategoriesRepo(db)
		settingsRepo = pg.NewSettingsRepo(db)
		memberRepo = pg.NewMembersRepo(db)
		eventRepo = pg.NewBreedingEventsRepo(db)
	case os.Getenv("SQLITE_PATH") != "":
		sdb, err := lite.Open(os.Getenv("SQLITE_PATH"))
		if err != nil {
			// sin storage local usable, caemos a memoria
			animalRepo = mem.NewAnimalRepo()
			categoryRepo = mem.NewCategoryRepo()
			settingsRepo = mem.NewSettingsRepo()
			memberRepo = mem.NewMembershipRepo()
			eventRepo = mem.NewBreedingEventRepo()
			break
		}
		animalRepo = lite.NewAnimalsRepo(sdb)
		categoryRepo = lite.NewCategoriesRepo(sdb)
		settingsRepo = lite.NewSettingsRepo(sdb)
		memberRepo = lite.NewMembersRepo(sdb)
		eventRepo = lite.NewBreedingEventsRepo(sdb)
	default:
		animalRepo = mem.NewAnimalRepo()
		categoryRepo = mem.NewCategoryRepo()
		settingsRepo = mem.NewSettingsRepo()
		memberRepo = mem.NewMembershipRepo()
		eventRepo = mem.NewBreedingEventRepo()
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo)
	categoriesSvc := categories.NewService(categoryRepo)
	settingsSvc := settings.NewService(settingsRepo)
	membersSvc := members.NewService(memberRepo)
	breedingSvc := breeding.NewService(eventRepo, animalsSvc, categoriesSvc, settingsSvc)

	// breeding clasifica animales nuevos; se inyecta acá para no crear ciclo.
	animalsSvc.SetClassifier(breedingSvc)

	if opts.Plans != nil {
		membersSvc.SetPlanResolver(opts.Plans)
	}

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc, membersSvc)
	categories.RegisterRoutes(r, categoriesSvc, membersSvc)
	settings.RegisterRoutes(r, settingsSvc, membersSvc)
	members.RegisterRoutes(r, membersSvc)
	breeding.RegisterRoutes(r, breedingSvc, membersSvc)

	return r
}
