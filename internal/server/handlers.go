package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

// CheckRequest is the body of POST /api/checkAllowance.
type CheckRequest struct {
	Address string `json:"address"`
	// ContractAddress is optional; without it the configured candidates are
	// probed in order.
	ContractAddress string `json:"contractAddress,omitempty"`
}

// CheckResponse is the reply. IsAllowed includes ownership.
type CheckResponse struct {
	IsAllowed       bool   `json:"isAllowed"`
	IsOwner         bool   `json:"isOwner"`
	ContractAddress string `json:"contractAddress,omitempty"`
	Error           string `json:"error,omitempty"`
}

func (s *Server) checkAllowance(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reject(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Address == "" {
		s.reject(c, http.StatusBadRequest, "Missing address")
		return
	}
	account, err := chain.ParseAddress(req.Address)
	if err != nil {
		s.reject(c, http.StatusBadRequest, err.Error())
		return
	}

	var status access.Status
	if req.ContractAddress != "" {
		addr, err := chain.ParseAddress(req.ContractAddress)
		if err != nil {
			s.reject(c, http.StatusBadRequest, err.Error())
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
		status, err = access.CheckOne(ctx, s.caller, account, addr)
		cancel()
		if err != nil {
			s.failed(c, err)
			return
		}
	} else {
		status, err = s.probe(c, account)
		if err != nil {
			if errors.Is(err, access.ErrNoCandidates) {
				s.reject(c, http.StatusBadRequest, "Missing contractAddress and no contracts configured")
				return
			}
			s.failed(c, err)
			return
		}
	}

	outcome := "denied"
	if status.IsAllowed {
		outcome = "allowed"
	}
	s.metrics.checks.WithLabelValues(outcome).Inc()
	c.JSON(http.StatusOK, CheckResponse{
		IsAllowed:       status.IsAllowed,
		IsOwner:         status.IsOwner,
		ContractAddress: status.Contract.Hex(),
	})
}

// probe runs the candidate scan. It is an error only when no candidate
// could be read at all.
func (s *Server) probe(c *gin.Context, account common.Address) (access.Status, error) {
	res, err := access.Probe(c.Request.Context(), s.caller, account, s.candidates, s.log,
		access.WithReadTimeout(s.timeout))
	if err != nil {
		return access.Status{}, err
	}
	if !res.Permitted {
		var errs []error
		for _, chk := range res.Checks {
			if chk.Err == nil {
				errs = nil
				break
			}
			errs = append(errs, chk.Err)
		}
		if len(errs) > 0 {
			return access.Status{}, errors.Join(errs...)
		}
	}
	return access.Status{Contract: res.Contract, IsAllowed: res.Permitted, IsOwner: res.IsOwner}, nil
}

func (s *Server) reject(c *gin.Context, code int, msg string) {
	s.metrics.checks.WithLabelValues("invalid").Inc()
	c.JSON(code, CheckResponse{Error: msg})
}

func (s *Server) failed(c *gin.Context, err error) {
	s.log.WithError(err).Error("checking allowance")
	s.metrics.checks.WithLabelValues("error").Inc()
	c.JSON(http.StatusInternalServerError, CheckResponse{Error: "Failed to check allowance"})
}
