package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/core/ports"
)

// BuildSystemPromptUseCase renders the tenant-branded system prompt the
// conversation layer prepends to each exchange. The knowledge-base
// section is filled by the retriever, including its sentinel strings.
type BuildSystemPromptUseCase struct {
	tenants   ports.TenantDirectory
	retriever ports.ContextRetriever
}

func NewBuildSystemPromptUseCase(tenants ports.TenantDirectory, retriever ports.ContextRetriever) *BuildSystemPromptUseCase {
	return &BuildSystemPromptUseCase{tenants: tenants, retriever: retriever}
}

func (uc *BuildSystemPromptUseCase) BuildSystemPrompt(ctx context.Context, tenantID, userMessage string) (string, error) {
	tenant, err := uc.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("lookup tenant: %w", err)
	}

	knowledge := uc.retriever.RetrieveContext(ctx, userMessage, tenantID, 0)
	return renderSystemPrompt(tenant, knowledge), nil
}

func renderSystemPrompt(tenant *domain.Tenant, knowledge string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a professional, friendly AI assistant representing %s. ", tenant.Name)
	b.WriteString("Your role is to help customers by answering questions, providing support, and promoting the company's products or services in a helpful and respectful manner.\n\n")
	fmt.Fprintf(&b, "Always begin with a warm greeting and clearly introduce yourself as part of the %s support team.\n\n", tenant.Name)
	fmt.Fprintf(&b, "Below is information from %s's knowledge base that may help address the user's question:\n\n", tenant.Name)
	b.WriteString(knowledge)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "If the knowledge base doesn't fully answer the question, use your general understanding, but only within the scope of %s's business, offerings, and customer needs. ", tenant.Name)
	b.WriteString("Do not answer questions unrelated to the company, its services, or customer support; politely steer the conversation back to how you can assist.\n")

	if tenant.HasCalendarIntegration {
		b.WriteString("\nIf scheduling or booking is mentioned, assist using the calendar integration.\n")
	}

	b.WriteString("\nMaintain a polite, professional, and supportive tone. If you are unsure about something, be transparent and suggest helpful next steps when possible.")
	return b.String()
}
