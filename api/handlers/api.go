package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/Loicqra12/ovpr-api/api"
	"github.com/Loicqra12/ovpr-api/api/scheduler"
	"github.com/Loicqra12/ovpr-api/config"
	"github.com/Loicqra12/ovpr-api/databases"
	"github.com/Loicqra12/ovpr-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	u := User{DB: databases.NewUserDatabase(a.dbHelper)}
	d := Declaration{
		DB:  databases.NewDeclarationDatabase(a.dbHelper),
		UDB: databases.NewUserDatabase(a.dbHelper),
	}
	wz := Wizard{
		SDB:      databases.NewWizardSessionDatabase(a.dbHelper),
		DDB:      databases.NewDeclarationDatabase(a.dbHelper),
		Captcha:  NewCaptchaVerifier(),
		Uploader: NewUploader(),
	}
	geo := Geocode{Client: NewGeocodeClient()}
	adm := Admin{ADB: databases.NewAdminDatabase(a.dbHelper)}
	ann := Announcement{ADB: databases.NewAnnouncementDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	// the wizard is open to anonymous declarants, submission is gated by the
	// captcha check inside SubmitHandler
	apiCreate.Handle("/wizard", http.HandlerFunc(wz.StartHandler)).Methods("POST")
	apiCreate.Handle("/wizard/{session_id}", http.HandlerFunc(wz.SessionHandler)).Methods("GET")
	apiCreate.Handle("/wizard/{session_id}", http.HandlerFunc(wz.AbandonHandler)).Methods("DELETE")
	apiCreate.Handle("/wizard/{session_id}/step", http.HandlerFunc(wz.StepHandler)).Methods("PUT")
	apiCreate.Handle("/wizard/{session_id}/back", http.HandlerFunc(wz.BackHandler)).Methods("PUT")
	apiCreate.Handle("/wizard/{session_id}/photos", http.HandlerFunc(wz.AddPhotoHandler)).Methods("POST")
	apiCreate.Handle("/wizard/{session_id}/photos", http.HandlerFunc(wz.RemovePhotoHandler)).Methods("DELETE")
	apiCreate.Handle("/wizard/{session_id}/submit", http.HandlerFunc(wz.SubmitHandler)).Methods("POST")

	apiCreate.Handle("/declaration/{declaration_id}", http.HandlerFunc(d.DeclarationByIDHandler)).Methods("GET")
	apiCreate.Handle("/declaration/{declaration_id}", api.Middleware(http.HandlerFunc(d.DeleteDeclarationHandler))).Methods("DELETE")
	apiCreate.Handle("/declaration/{declaration_id}/status", api.Middleware(http.HandlerFunc(d.UpdateStatusHandler))).Methods("PUT")
	apiCreate.Handle("/declaration/{declaration_id}/reward-checkout", api.Middleware(http.HandlerFunc(d.CreateRewardCheckoutHandler))).Methods("POST")
	apiCreate.Handle("/declarations", http.HandlerFunc(d.DeclarationHandler)).Methods("GET")
	apiCreate.Handle("/declaration/tracking/{tracking_number}", http.HandlerFunc(d.DeclarationByTrackingNumberHandler)).Methods("GET")
	apiCreate.Handle("/declarations/user/{user_id}", api.Middleware(http.HandlerFunc(d.DeclarationsByUserIDHandler))).Methods("GET")

	apiCreate.Handle("/geocode/search", http.HandlerFunc(geo.SearchHandler)).Methods("GET")
	apiCreate.Handle("/geocode/reverse", http.HandlerFunc(geo.ReverseHandler)).Methods("GET")

	apiCreate.Handle("/user/create-user", http.HandlerFunc(u.UserCreateHandler)).Methods("POST")
	apiCreate.Handle("/user/{user_id}", api.Middleware(http.HandlerFunc(u.UserHandler))).Methods("GET")
	apiCreate.Handle("/users/notifications", api.Middleware(http.HandlerFunc(u.AddNotificationHandler))).Methods("POST")
	apiCreate.Handle("/users/{user_id}/notifications", api.Middleware(http.HandlerFunc(u.GetUserNotificationsHandler))).Methods("GET")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")

	apiCreate.Handle("/announcements", http.HandlerFunc(ann.AnnouncementHandler)).Methods("GET")
	apiCreate.Handle("/announcement", api.Middleware(http.HandlerFunc(ann.CreateAnnouncementHandler))).Methods("POST")
	apiCreate.Handle("/announcement/{announcement_id}", api.Middleware(http.HandlerFunc(ann.DeleteAnnouncementHandler))).Methods("DELETE")

	apiCreate.Handle("/generate-signature", api.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/success", http.HandlerFunc(d.handleSuccessRedirect)).Methods("GET")
	apiCreate.Handle("/cancel", http.HandlerFunc(d.handleCancelRedirect)).Methods("GET")

	r.HandleFunc("/ws/notifications", HandleNotificationsWebSocket)

	// swagger docs hosted at "/"
	r.PathPrefix("/").Handler(http.StripPrefix("/", http.FileServer(http.Dir("./docs/"))))
	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("ovpr-api has connected to the database")

	// initialize stripe
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key is not set")
	}
	stripe.Key = stripeKey

	// initialize api router
	a.initializeRoutes()
	return nil

}

// StartScheduler wires the background jobs against the app's database
// connection and starts them
func (a *App) StartScheduler() *scheduler.Scheduler {
	s := scheduler.NewScheduler(
		databases.NewWizardSessionDatabase(a.dbHelper),
		databases.NewDeclarationDatabase(a.dbHelper),
		databases.NewUserDatabase(a.dbHelper),
	)
	s.Start()
	return s
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
