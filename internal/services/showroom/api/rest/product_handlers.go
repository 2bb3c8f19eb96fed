package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/verisim/verisim/internal/services/showroom/catalog"
)

// maxUploadBytes caps multipart product uploads, model asset included.
const maxUploadBytes = 64 << 20

type uploadCharacteristic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type uploadScenario struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	IsTemplate  bool           `json:"is_template"`
}

type uploadResponse struct {
	Product      productView `json:"product"`
	CompatOK     bool        `json:"compat_ok"`
	CompatReason string      `json:"compat_reason,omitempty"`
	ScenarioIDs  []string    `json:"scenario_ids,omitempty"`
}

// handleUploadProduct accepts a multipart form with the product
// metadata and an optional model_file part. Characteristics and
// scenarios arrive as JSON-encoded form fields.
func (h *Handler) handleUploadProduct(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	input := catalog.UploadInput{
		OwnerID:     identityFrom(r).UserID,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	if raw := strings.TrimSpace(r.FormValue("characteristics")); raw != "" {
		var characteristics []uploadCharacteristic
		if err := json.Unmarshal([]byte(raw), &characteristics); err != nil {
			writeError(w, http.StatusBadRequest, "invalid characteristics field")
			return
		}
		for _, c := range characteristics {
			input.Characteristics = append(input.Characteristics, catalog.CharacteristicInput(c))
		}
	}
	if raw := strings.TrimSpace(r.FormValue("scenarios")); raw != "" {
		var scenarios []uploadScenario
		if err := json.Unmarshal([]byte(raw), &scenarios); err != nil {
			writeError(w, http.StatusBadRequest, "invalid scenarios field")
			return
		}
		for _, s := range scenarios {
			input.Scenarios = append(input.Scenarios, catalog.ScenarioInput(s))
		}
	}

	file, header, err := r.FormFile("model_file")
	if err == nil {
		defer file.Close()
		input.Model = &catalog.ModelUpload{Filename: header.Filename, Content: file}
	} else if !errors.Is(err, http.ErrMissingFile) {
		writeError(w, http.StatusBadRequest, "invalid model_file field")
		return
	}

	result, err := h.catalog.UploadProduct(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		Product:      toProductView(result.Product),
		CompatOK:     result.Compat.OK,
		CompatReason: result.Compat.Reason,
		ScenarioIDs:  result.ScenarioIDs,
	})
}

// handleListProducts lists verified products, or an owner's full
// catalog when owner_id is supplied. The owner listing requires the
// caller to be that owner.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		products, err := h.catalog.ListAvailableProducts(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(products)})
		return
	}

	h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r).UserID != ownerID {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		products, err := h.catalog.ListOwnerProducts(r.Context(), ownerID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(products)})
	})(w, r)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	details, err := h.catalog.GetProductDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"product":         toProductView(details.Product),
		"scenarios":       toScenarioViews(details.Scenarios),
		"characteristics": toCharacteristicViews(details.Characteristics),
	})
}

func (h *Handler) handleListProductScenarios(w http.ResponseWriter, r *http.Request) {
	details, err := h.catalog.GetProductDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": toScenarioViews(details.Scenarios)})
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), identityFrom(r).UserID, mux.Vars(r)["id"], catalog.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": toProductView(product)})
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), identityFrom(r).UserID, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListScenarioTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.ListScenarioTemplates(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": toScenarioViews(templates)})
}
