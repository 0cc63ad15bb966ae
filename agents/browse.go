package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/shaonidutta/converge-ai/domain"
)

// CatalogBrowser is the collaborator-provided category browser §6
// delegates service_inquiry/service_discovery to.
type CatalogBrowser interface {
	BrowseCategories(ctx context.Context, query string) (names []string, err error)
}

type BrowseHandler struct {
	browser CatalogBrowser
}

func NewBrowseHandler(browser CatalogBrowser) *BrowseHandler {
	return &BrowseHandler{browser: browser}
}

func (h *BrowseHandler) Execute(ctx context.Context, req Request) (Result, error) {
	query := req.Entities[string(domain.EntityQuery)]
	names, err := h.browser.BrowseCategories(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("browse handler: browse categories: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	if len(names) == 0 {
		return Result{
			ResponseText: "We offer a range of home services. Could you tell me what you're looking for?",
			ActionTaken:  domain.ActionBrowseCatalog,
		}, nil
	}
	return Result{
		ResponseText: fmt.Sprintf("We offer: %s. Which would you like to know more about?", strings.Join(names, ", ")),
		ActionTaken:  domain.ActionBrowseCatalog,
		Metadata:     map[string]interface{}{"categories": names},
	}, nil
}

var _ Handler = (*BrowseHandler)(nil)
