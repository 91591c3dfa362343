package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/emrsvc/domain"
)

// PolicyHandlers exposes the role policies to admins
type PolicyHandlers struct{ policySvc domain.PolicyService }

// NewPolicyHandlers creates new policy handlers
func NewPolicyHandlers(policySvc domain.PolicyService) *PolicyHandlers {
	return &PolicyHandlers{policySvc: policySvc}
}

type policyReq struct {
	Sub string `json:"sub"`
	Obj string `json:"obj"`
	Act string `json:"act"`
}

func (r policyReq) valid() bool { return r.Sub != "" && r.Obj != "" && r.Act != "" }

func (h *PolicyHandlers) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.policySvc.GetPolicies(), "success": true})
}

func (h *PolicyHandlers) Add(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil || !r.valid() {
		respondError(c, http.StatusBadRequest, "sub, obj and act are required")
		return
	}
	if err := h.policySvc.AddPolicy(r.Sub, r.Obj, r.Act); err != nil {
		respondError(c, http.StatusBadRequest, "Policy not added")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandlers) Remove(c *gin.Context) {
	var r policyReq
	if err := c.ShouldBindJSON(&r); err != nil || !r.valid() {
		respondError(c, http.StatusBadRequest, "sub, obj and act are required")
		return
	}
	if err := h.policySvc.RemovePolicy(r.Sub, r.Obj, r.Act); err != nil {
		respondError(c, http.StatusBadRequest, "Policy not removed")
		return
	}
	c.Status(http.StatusNoContent)
}
