package handler

import (
	"net/http"

	"socialflow/internal/automation"
	rule "socialflow/internal/domain/automation"
	"socialflow/internal/services"
	"socialflow/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type AutomationHandler struct {
	service *services.AutomationService
	engine  *automation.Engine
	inbox   *services.InboxService
}

func NewAutomationHandler(service *services.AutomationService, engine *automation.Engine, inbox *services.InboxService) *AutomationHandler {
	return &AutomationHandler{service: service, engine: engine, inbox: inbox}
}

func (h *AutomationHandler) Create(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	in, ok := bindRule(c)
	if !ok {
		return
	}
	r, err := h.service.Create(c.Request.Context(), id.WorkspaceID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.FromRule(r)))
}

func (h *AutomationHandler) Update(c *gin.Context) {
	id, ruleID, ok := identityAndID(c, "ruleID", "invalid rule id")
	if !ok {
		return
	}
	in, ok := bindRule(c)
	if !ok {
		return
	}
	r, err := h.service.Update(c.Request.Context(), id.WorkspaceID, ruleID, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRule(r)))
}

func (h *AutomationHandler) Get(c *gin.Context) {
	id, ruleID, ok := identityAndID(c, "ruleID", "invalid rule id")
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), id.WorkspaceID, ruleID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRule(r)))
}

func (h *AutomationHandler) List(c *gin.Context) {
	id, ok := services.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	rules, err := h.service.List(c.Request.Context(), id.WorkspaceID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromRuleSlice(rules)))
}

func (h *AutomationHandler) Delete(c *gin.Context) {
	id, ruleID, ok := identityAndID(c, "ruleID", "invalid rule id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id.WorkspaceID, ruleID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TestEvaluate reports which rules would fire for an existing item
// without executing anything. Used by workspace admins to sanity-check a
// new rule against real traffic.
func (h *AutomationHandler) TestEvaluate(c *gin.Context) {
	id, itemID, ok := identityAndID(c, "itemID", "invalid item id")
	if !ok {
		return
	}
	item, err := h.inbox.Get(c.Request.Context(), id.WorkspaceID, itemID)
	if err != nil {
		c.Error(err)
		return
	}
	matched, err := h.engine.DryRun(c.Request.Context(), item)
	if err != nil {
		c.Error(err)
		return
	}
	ids := make([]string, 0, len(matched))
	for _, m := range matched {
		ids = append(ids, m.String())
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"matched_rule_ids": ids}))
}

func bindRule(c *gin.Context) (services.RuleInput, bool) {
	var req httpdto.RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_INPUT"))
		return services.RuleInput{}, false
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return services.RuleInput{
		Name:              req.Name,
		TriggerType:       rule.TriggerType(req.TriggerType),
		TriggerConditions: req.TriggerConditions,
		ActionType:        rule.ActionType(req.ActionType),
		ActionParams:      req.ActionParams,
		Priority:          req.Priority,
		IsActive:          active,
	}, true
}
