package rest

import (
	"time"

	"github.com/verisim/verisim/internal/services/showroom/domain"
)

// userView is the outward shape of an account. The password hash never
// leaves the service.
type userView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(user domain.User) userView {
	return userView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

type productView struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ModelFilePath string    `json:"model_file_path,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toProductView(product domain.Product) productView {
	return productView{
		ID:            product.ID,
		OwnerID:       product.OwnerID,
		Name:          product.Name,
		Description:   product.Description,
		ModelFilePath: product.ModelFilePath,
		Status:        product.Status.String(),
		CreatedAt:     product.CreatedAt,
	}
}

func toProductViews(products []domain.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views
}

type scenarioView struct {
	ID          string         `json:"id"`
	ProductID   string         `json:"product_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	IsTemplate  bool           `json:"is_template"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toScenarioView(scenario domain.Scenario) scenarioView {
	return scenarioView{
		ID:          scenario.ID,
		ProductID:   scenario.ProductID,
		Name:        scenario.Name,
		Description: scenario.Description,
		Data:        scenario.Data,
		IsTemplate:  scenario.IsTemplate,
		CreatedAt:   scenario.CreatedAt,
	}
}

func toScenarioViews(scenarios []domain.Scenario) []scenarioView {
	views := make([]scenarioView, 0, len(scenarios))
	for _, s := range scenarios {
		views = append(views, toScenarioView(s))
	}
	return views
}

type characteristicView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func toCharacteristicViews(characteristics []domain.Characteristic) []characteristicView {
	views := make([]characteristicView, 0, len(characteristics))
	for _, c := range characteristics {
		views = append(views, characteristicView{ID: c.ID, Name: c.Name, Value: c.Value})
	}
	return views
}

type sessionView struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ProductID   string     `json:"product_id"`
	ScenarioID  string     `json:"scenario_id,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toSessionView(session domain.TestSession) sessionView {
	return sessionView{
		ID:          session.ID,
		UserID:      session.UserID,
		ProductID:   session.ProductID,
		ScenarioID:  session.ScenarioID,
		Status:      session.Status.String(),
		CreatedAt:   session.CreatedAt,
		CompletedAt: session.CompletedAt,
	}
}
