package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/arawak/annales/internal/catalog"
	"github.com/arawak/annales/internal/combo"
	"github.com/arawak/annales/internal/tags"
)

// Types and parameter binding mirror openapi.yaml.

type HealthStatus string

const Ok HealthStatus = "ok"

type Health struct {
	Status HealthStatus `json:"status"`
}

type Error struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details *map[string]any `json:"details,omitempty"`
}

type CorrectionLink struct {
	N     int    `json:"n"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

type ExerciseItem struct {
	catalog.Exercise
	Index         int              `json:"index"`
	Title         string           `json:"title"`
	VisibleTopics []string         `json:"visible_topics"`
	SubjectHref   string           `json:"subject_href"`
	Corrections   []CorrectionLink `json:"corrections"`
}

type ExerciseList struct {
	Count int            `json:"count"`
	Limit int            `json:"limit"`
	Items []ExerciseItem `json:"items"`
}

type TagItem struct {
	tags.Entry
	Selected bool `json:"selected"`
}

type TagList struct {
	Mode   string    `json:"mode"`
	Items  []TagItem `json:"items"`
	Hidden int       `json:"hidden"`
}

// GenerateRequest is the body of POST /api/generate. K is kept raw so that
// numbers and numeric strings are both accepted and anything else reported.
type GenerateRequest struct {
	Tags               []string        `json:"tags"`
	K                  json.RawMessage `json:"k,omitempty"`
	AvoidSameSubject   *bool           `json:"avoid_same_subject,omitempty"`
	OnlySelectedTopics *bool           `json:"only_selected_topics,omitempty"`
}

// KText returns K as the text typed by the user.
func (g GenerateRequest) KText() string {
	raw := strings.TrimSpace(string(g.K))
	if raw == "" || raw == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(g.K, &s); err == nil {
		return s
	}
	return raw
}

// GeneratedItem is a generated exercise with the topics to display: the ones
// it covers when the generator reported them, all of them otherwise.
type GeneratedItem struct {
	combo.GeneratedExercise
	Title         string   `json:"title"`
	DisplayTopics []string `json:"display_topics"`
}

type GenerateResponse struct {
	RequestedTags []string        `json:"requested_tags"`
	CoveredTags   []string        `json:"covered_tags"`
	MissingTags   []string        `json:"missing_tags"`
	Count         int             `json:"count"`
	Summary       string          `json:"summary"`
	Exercises     []GeneratedItem `json:"exercises"`
}

type ListExercisesParams struct {
	Q       *string   `form:"q,omitempty" json:"q,omitempty"`
	Year    *string   `form:"year,omitempty" json:"year,omitempty"`
	Session *string   `form:"session,omitempty" json:"session,omitempty"`
	Points  *string   `form:"points,omitempty" json:"points,omitempty"`
	Tag     *[]string `form:"tag,omitempty" json:"tag,omitempty"`
	Strict  *bool     `form:"strict,omitempty" json:"strict,omitempty"`
	Limit   *int      `form:"limit,omitempty" json:"limit,omitempty"`
}

type ListTagsParams struct {
	Mode *string   `form:"mode,omitempty" json:"mode,omitempty"`
	Q    *string   `form:"q,omitempty" json:"q,omitempty"`
	All  *bool     `form:"all,omitempty" json:"all,omitempty"`
	Tag  *[]string `form:"tag,omitempty" json:"tag,omitempty"`
}

type ServerInterface interface {
	ListExercises(w http.ResponseWriter, r *http.Request, params ListExercisesParams)
	GetExercise(w http.ResponseWriter, r *http.Request, index int)
	GetExerciseSubject(w http.ResponseWriter, r *http.Request, index int)
	GetExerciseCorrection(w http.ResponseWriter, r *http.Request, index int, n int)
	ListTags(w http.ResponseWriter, r *http.Request, params ListTagsParams)
	GetFacets(w http.ResponseWriter, r *http.Request)
	GenerateCombo(w http.ResponseWriter, r *http.Request)
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) ListExercises(w http.ResponseWriter, r *http.Request) {
	var params ListExercisesParams
	query := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"q", &params.Q},
		{"year", &params.Year},
		{"session", &params.Session},
		{"points", &params.Points},
		{"tag", &params.Tag},
		{"strict", &params.Strict},
		{"limit", &params.Limit},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: b.name, Err: err})
			return
		}
	}
	siw.Handler.ListExercises(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := siw.pathInt(w, r, "index")
	if !ok {
		return
	}
	siw.Handler.GetExercise(w, r, index)
}

func (siw *ServerInterfaceWrapper) GetExerciseSubject(w http.ResponseWriter, r *http.Request) {
	index, ok := siw.pathInt(w, r, "index")
	if !ok {
		return
	}
	siw.Handler.GetExerciseSubject(w, r, index)
}

func (siw *ServerInterfaceWrapper) GetExerciseCorrection(w http.ResponseWriter, r *http.Request) {
	index, ok := siw.pathInt(w, r, "index")
	if !ok {
		return
	}
	n, ok := siw.pathInt(w, r, "n")
	if !ok {
		return
	}
	siw.Handler.GetExerciseCorrection(w, r, index, n)
}

func (siw *ServerInterfaceWrapper) ListTags(w http.ResponseWriter, r *http.Request) {
	var params ListTagsParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "mode", query, &params.Mode); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "mode", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "all", query, &params.All); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "all", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "tag", query, &params.Tag); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "tag", Err: err})
		return
	}
	siw.Handler.ListTags(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetFacets(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetFacets(w, r)
}

func (siw *ServerInterfaceWrapper) GenerateCombo(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GenerateCombo(w, r)
}

func (siw *ServerInterfaceWrapper) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return 0, false
	}
	return v, true
}

func correctionHref(index, n int) string {
	return "/api/exercises/" + strconv.Itoa(index) + "/corrections/" + strconv.Itoa(n)
}

func subjectHref(index int) string {
	return "/api/exercises/" + strconv.Itoa(index) + "/subject"
}
