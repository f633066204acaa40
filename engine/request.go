package engine

import (
	"context"
	"fmt"

	"github.com/humancognome/textpbm/internal/errs"
)

// Action names one of the facade's external operations (spec §6.1).
type Action string

const (
	ActionHealth     Action = "health"
	ActionTokenize   Action = "tokenize"
	ActionIngest     Action = "ingest"
	ActionList       Action = "list"
	ActionInfo       Action = "info"
	ActionRetrieve   Action = "retrieve"
	ActionBonds      Action = "bonds"
	ActionUpdateMeta Action = "update_meta"
)

// Request is the JSON-tagged wire shape of one facade call (spec §6.1,
// framed per §6.2 by an external transport this package does not
// implement). Fields not relevant to Action are left zero.
type Request struct {
	Action Action `json:"action"`

	Text        string         `json:"text,omitempty"`
	Name        string         `json:"name,omitempty"`
	Century     string         `json:"century,omitempty"`
	Category    string         `json:"category,omitempty"`
	Subcategory string         `json:"subcategory,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`

	DocID int64  `json:"doc_id,omitempty"`
	Token string `json:"token,omitempty"`

	Set    map[string]any `json:"set,omitempty"`
	Remove []string       `json:"remove,omitempty"`
}

// InfoResult is the output of the info action: document addressing and
// metadata plus PBM summary statistics, without the raw bond multiset
// (use the bonds action for that).
type InfoResult struct {
	DocID       int64
	DocTokenID  string
	Name        string
	CenturyCode string
	Category    string
	Subcategory string
	Metadata    map[string]any
	FirstFPB    [2]string
	UniqueCount int
	BondCount   int
	TotalPairs  int
}

// Response is the JSON-tagged wire shape of one facade reply. Status is
// "ok" or "error"; on error, Message carries the failure and every
// result field is left nil.
type Response struct {
	Action  Action `json:"action"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	Health     *HealthResult     `json:"health,omitempty"`
	Tokenize   *TokenizeResult   `json:"tokenize,omitempty"`
	Ingest     *IngestResult     `json:"ingest,omitempty"`
	List       []DocumentSummary `json:"documents,omitempty"`
	Info       *InfoResult       `json:"info,omitempty"`
	Retrieve   *RetrieveResult   `json:"retrieve,omitempty"`
	Bonds      []BondEntry       `json:"bonds,omitempty"`
	UpdateMeta *UpdateMetaResult `json:"update_meta,omitempty"`
}

func errResponse(action Action, err error) Response {
	return Response{Action: action, Status: "error", Message: err.Error()}
}

func okResponse(action Action) Response {
	return Response{Action: action, Status: "ok"}
}

// Dispatch routes req to the matching Engine method and wraps the
// result in a Response, giving a transport (socket, CLI) a single
// exhaustive entry point into the facade (spec §6.1).
func (e *Engine) Dispatch(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionHealth:
		res, err := e.Health(ctx)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Health = &res
		return resp

	case ActionTokenize:
		res, err := e.Tokenize(ctx, req.Text)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Tokenize = &res
		return resp

	case ActionIngest:
		res, err := e.Ingest(ctx, IngestRequest{
			Text: req.Text, Name: req.Name, Century: req.Century,
			Category: req.Category, Subcategory: req.Subcategory, Metadata: req.Metadata,
		})
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Ingest = &res
		return resp

	case ActionList:
		res, err := e.List(ctx)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.List = res
		return resp

	case ActionInfo:
		doc, pbm, err := e.Info(ctx, req.DocID)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Info = &InfoResult{
			DocID: doc.DocID, DocTokenID: doc.TokenID,
			Name: doc.Meta.Name, CenturyCode: doc.Meta.CenturyCode,
			Category: doc.Meta.Category, Subcategory: doc.Meta.Subcategory,
			Metadata: doc.Meta.Metadata, FirstFPB: doc.FirstFPB,
			UniqueCount: len(pbm.UniqueTokens), BondCount: len(pbm.Bonds), TotalPairs: pbm.TotalPairs,
		}
		return resp

	case ActionRetrieve:
		res, err := e.Retrieve(ctx, req.DocID)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Retrieve = &res
		return resp

	case ActionBonds:
		res, err := e.Bonds(ctx, req.DocID, req.Token)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.Bonds = res
		return resp

	case ActionUpdateMeta:
		res, err := e.UpdateMeta(ctx, req.DocID, req.Set, req.Remove)
		if err != nil {
			return errResponse(req.Action, err)
		}
		resp := okResponse(req.Action)
		resp.UpdateMeta = &res
		return resp

	default:
		return errResponse(req.Action, fmt.Errorf("%w: unknown action %q", errs.ErrMalformedRequest, req.Action))
	}
}
