package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/socialwiz/wingman/server/prompt"
)

// Version is the service version reported by the root endpoint.
const Version = "1.0.0"

// InfoHandler serves GET /, a service descriptor listing the available modes
// and their fields.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	descriptor := map[string]interface{}{
		"message": "Wingman - Your Conversation Assistant",
		"version": Version,
		"endpoint": map[string]string{
			"chat": "POST /v1/chat (multipart/form-data)",
		},
		"modes": map[string]interface{}{
			"rewrite": map[string]interface{}{
				"name":            "Message Rewriter",
				"description":     "Rewrite a draft reply to match a target mood",
				"required_fields": []string{"original_message", "draft"},
				"optional_fields": []string{"mood", "context", "disabled_traits", "file"},
				"moods":           prompt.RewriteMoods(),
			},
			"icebreaker": map[string]interface{}{
				"name":            "Icebreaker Generator",
				"description":     "Generate a conversation opener with a structural pattern",
				"required_fields": []string{"opener_type"},
				"optional_fields": []string{"context", "disabled_traits"},
				"opener_types":    prompt.OpenerTypes(),
			},
			"curveball": map[string]interface{}{
				"name":            "Curveball Handler",
				"description":     "Handle an awkward conversational moment in a chosen mood",
				"required_fields": []string{"situation"},
				"optional_fields": []string{"mood", "disabled_traits", "file"},
				"moods":           prompt.CurveballMoods(),
			},
		},
		"personalization_traits": prompt.TraitIDs(),
		"health":                 "/health",
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(descriptor); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}

// HealthHandler serves GET /health.
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "healthy",
		"service":      "wingman",
		"modes_active": []string{"rewrite", "icebreaker", "curveball"},
	}); err != nil {
		http.Error(w, "encoding failed", http.StatusInternalServerError)
	}
}
