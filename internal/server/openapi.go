package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses. Code carries the domain
// error discriminator when one applies.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "PastPlaces API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the PastPlaces daily photo guessing game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/daily and /api/daily/{date}
	getDaily, _ := r.NewOperationContext(http.MethodGet, "/api/daily")
	getDaily.SetSummary("Today's daily set")
	getDaily.SetDescription("Returns today's published daily set: photo urls and attribution, no answers.")
	getDaily.AddRespStructure(DailySetResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getDaily.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getDaily)

	getDailyByDate, _ := r.NewOperationContext(http.MethodGet, "/api/daily/{date}")
	getDailyByDate.SetSummary("Daily set for a date")
	getDailyByDate.SetDescription("Returns the published daily set for the given YYYY-MM-DD date.")
	getDailyByDate.AddRespStructure(DailySetResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getDailyByDate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getDailyByDate)

	// POST /api/daily/submit
	postSubmit, _ := r.NewOperationContext(http.MethodPost, "/api/daily/submit")
	postSubmit.SetSummary("Submit daily challenge guesses")
	postSubmit.SetDescription("Scores exactly 5 guesses against the daily set. Identity comes from a Bearer session " +
		"token (authenticated) or an X-Device-Token header with consentGiven (anonymous). Without either the attempt " +
		"is scored but not saved and only a potential rank is returned. One saved attempt per identity per day.")
	postSubmit.AddReqStructure(SubmitRequest{})
	postSubmit.AddRespStructure(SubmitResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postSubmit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postSubmit)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Daily leaderboard")
	getBoard.SetDescription("Top submissions for a date (default today), ordered by score, time, then submission instant. " +
		"limit is 1-1000, default 100.")
	getBoard.AddRespStructure(LeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	// POST /api/admin/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/admin/login")
	postLogin.SetSummary("Admin login")
	postLogin.SetDescription("Authenticate with email and password. Sets admin_session cookie.")
	postLogin.AddReqStructure(AdminLoginRequest{})
	postLogin.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// POST /api/admin/logout
	postLogout, _ := r.NewOperationContext(http.MethodPost, "/api/admin/logout")
	postLogout.SetSummary("Admin logout")
	postLogout.SetDescription("Clears admin session and cookie.")
	postLogout.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(postLogout)

	// GET /api/admin/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/admin/me")
	getMe.SetSummary("Current admin")
	getMe.SetDescription("Returns the currently authenticated admin. Requires admin_session cookie.")
	getMe.AddRespStructure(AdminMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/admin/photos
	listPhotos, _ := r.NewOperationContext(http.MethodGet, "/api/admin/photos")
	listPhotos.SetSummary("List photos")
	listPhotos.SetDescription("Returns the photo catalog with answers. Requires admin_session cookie.")
	listPhotos.AddRespStructure([]AdminPhotoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	listPhotos.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listPhotos)

	// POST /api/admin/photos
	createPhoto, _ := r.NewOperationContext(http.MethodPost, "/api/admin/photos")
	createPhoto.SetSummary("Create photo")
	createPhoto.SetDescription("Adds a photo with its reference coordinates and optional year. Requires admin_session cookie.")
	createPhoto.AddReqStructure(AdminPhotoRequest{})
	createPhoto.AddRespStructure(AdminPhotoResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createPhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createPhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createPhoto)

	// GET /api/admin/photos/{id}
	getPhoto, _ := r.NewOperationContext(http.MethodGet, "/api/admin/photos/{id}")
	getPhoto.SetSummary("Get photo")
	getPhoto.AddRespStructure(AdminPhotoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getPhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getPhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getPhoto)

	// PUT /api/admin/photos/{id}
	updatePhoto, _ := r.NewOperationContext(http.MethodPut, "/api/admin/photos/{id}")
	updatePhoto.SetSummary("Update photo")
	updatePhoto.AddReqStructure(AdminPhotoRequest{})
	updatePhoto.AddRespStructure(AdminPhotoResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	updatePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updatePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	updatePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updatePhoto)

	// DELETE /api/admin/photos/{id}
	deletePhoto, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/photos/{id}")
	deletePhoto.SetSummary("Delete photo")
	deletePhoto.SetDescription("Deletes a photo. Blocked while a daily set references it.")
	deletePhoto.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deletePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deletePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deletePhoto.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deletePhoto)

	// GET /api/admin/daily-sets
	listSets, _ := r.NewOperationContext(http.MethodGet, "/api/admin/daily-sets")
	listSets.SetSummary("List daily sets")
	listSets.AddRespStructure([]DailySetSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	listSets.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listSets)

	// POST /api/admin/daily-sets
	createSet, _ := r.NewOperationContext(http.MethodPost, "/api/admin/daily-sets")
	createSet.SetSummary("Create daily set")
	createSet.SetDescription("Creates an unpublished daily set of exactly 5 photos for a date with no existing set.")
	createSet.AddReqStructure(AdminDailySetRequest{})
	createSet.AddRespStructure(AdminDailySetResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	createSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createSet)

	// GET /api/admin/daily-sets/{id}
	getSet, _ := r.NewOperationContext(http.MethodGet, "/api/admin/daily-sets/{id}")
	getSet.SetSummary("Get daily set")
	getSet.AddRespStructure(AdminDailySetResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getSet)

	// POST /api/admin/daily-sets/{id}/publish
	publishSet, _ := r.NewOperationContext(http.MethodPost, "/api/admin/daily-sets/{id}/publish")
	publishSet.SetSummary("Publish daily set")
	publishSet.SetDescription("Makes the set playable. Requires exactly 5 photos.")
	publishSet.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	publishSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	publishSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	publishSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(publishSet)

	// DELETE /api/admin/daily-sets/{id}
	deleteSet, _ := r.NewOperationContext(http.MethodDelete, "/api/admin/daily-sets/{id}")
	deleteSet.SetSummary("Delete daily set")
	deleteSet.SetDescription("Deletes a set. Blocked once submissions exist.")
	deleteSet.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK))
	deleteSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	deleteSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	deleteSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteSet)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
