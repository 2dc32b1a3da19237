// pkg/ai/mock_client.go

package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type mockClient struct{}

// NewMock returns a canned itinerary built from the prompt's fields. Used when
// no provider credentials are configured.
func NewMock() Client { return &mockClient{} }

func (m *mockClient) Provider() string { return "mock" }
func (m *mockClient) Model() string    { return "mock" }

var (
	mockField = regexp.MustCompile(`\*\*(Destination|Trip Duration|Main Interests):\*\*\s*(.+)`)
	mockDays  = regexp.MustCompile(`(\d+)\s*(day|week)`)
)

func (m *mockClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fields := map[string]string{}
	for _, match := range mockField.FindAllStringSubmatch(prompt, -1) {
		fields[match[1]] = strings.TrimSpace(match[2])
	}
	dest := fields["Destination"]
	if dest == "" {
		dest = "Georgia"
	}
	interests := fields["Main Interests"]
	if interests == "" {
		interests = "general sightseeing"
	}

	days := 3
	if match := mockDays.FindStringSubmatch(strings.ToLower(fields["Trip Duration"])); match != nil {
		n, _ := strconv.Atoi(match[1])
		if match[2] == "week" {
			n *= 7
		}
		if n > 0 {
			days = min(n, 14)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s, the easy way (mock)\n\n", dest)
	fmt.Fprintf(&sb, "A relaxed plan for %s focused on %s. Generated offline, no AI provider configured.\n\n", dest, interests)
	for d := 1; d <= days; d++ {
		fmt.Fprintf(&sb, "## Day %d\n", d)
		fmt.Fprintf(&sb, "- **Morning:** explore %s\n", dest)
		fmt.Fprintf(&sb, "- **Evening:** supra dinner with local wine\n\n")
	}
	return sb.String(), nil
}
