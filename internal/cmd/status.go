package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/styrcan/pulse/internal/credentials"
	"github.com/styrcan/pulse/internal/session"
)

var (
	statusTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusOKStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	statusWarnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	statusMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func printStatus(current session.Session, creds *credentials.Store) {
	fmt.Println(statusTitleStyle.Render("Pulse Session"))

	if !current.Authenticated {
		fmt.Println(statusWarnStyle.Render("○ not logged in"))
		fmt.Println(statusMutedStyle.Render("Use 'pulse auth login' to authenticate."))
		return
	}

	fmt.Println(statusOKStyle.Render("● logged in"))
	fmt.Printf("User:    %s <%s>\n", current.User.DisplayName(), current.User.Email)
	fmt.Printf("Role:    %s\n", current.User.Role)
	if current.Company != nil {
		fmt.Printf("Company: %s (%s)\n", current.Company.Name, current.Company.ID)
	}
	if line := tokenExpiryLine(creds); line != "" {
		fmt.Println(line)
	}
}

type statusPayload struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	Name          string `json:"name,omitempty"`
	Role          string `json:"role,omitempty"`
	CompanyID     string `json:"company_id,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	TokenExpiry   string `json:"token_expiry,omitempty"`
}

func printStatusJSON(current session.Session, creds *credentials.Store) error {
	payload := statusPayload{Authenticated: current.Authenticated}

	if current.User != nil {
		payload.Email = current.User.Email
		payload.Name = current.User.DisplayName()
		payload.Role = string(current.User.Role)
		payload.CompanyID = current.User.CompanyID
	}
	if current.Company != nil {
		payload.CompanyName = current.Company.Name
	}
	if pair, err := creds.LoadTokens(); err == nil && !pair.Empty() {
		if expiry, err := credentials.TokenExpiry(pair.AccessToken); err == nil {
			payload.TokenExpiry = expiry.Format(time.RFC3339)
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
