// internal/app/features/laags/status.go
package laags

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/laag/internal/app/policy/laagpolicy"
	laagstore "github.com/dalemusser/laag/internal/app/store/laags"
	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/htmlsanitize"
	"github.com/dalemusser/laag/internal/app/system/inputval"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"github.com/dalemusser/laag/internal/app/system/transitions"
	"github.com/dalemusser/laag/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCancel moves a planning laag to Cancelled and notifies attendees.
// POST /groups/{id}/laags/{laagID}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	out, err := h.Transitions.Cancel(ctx, l.ID, a)
	if err != nil {
		h.writeStoreError(w, r, "cancel laag failed", err)
		return
	}
	h.Log.Info("laag cancelled",
		zap.String("laag_id", l.ID.Hex()),
		zap.Int("recipients", len(out.Recipients)),
		zap.Bool("fan_out_failed", out.FanOutFailed))
	h.Audit.LaagStatusChanged(r.Context(), r, a.ID, l.GroupID, l.ID, out.Laag.Status)
	httpx.WriteJSON(w, http.StatusOK, out)
}

// readCompleteForm fills in from multipart fields. attendee_ids is only
// applied when the field is present; a single empty value clears the list.
func readCompleteForm(r *http.Request, in *completeInput) inputval.Errors {
	errs := inputval.Errors{}
	form := r.MultipartForm.Value
	first := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return strings.TrimSpace(v[0])
		}
		return ""
	}

	if s := first("actual_cost"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs["actual_cost"] = "must be a number"
		} else {
			in.ActualCost = &v
		}
	}
	if s := first("fun_meter"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs["fun_meter"] = "must be a whole number"
		} else {
			in.FunMeter = &v
		}
	}
	in.Privacy = first("privacy")
	in.Type = first("type")

	if vals, present := form["attendee_ids"]; present {
		in.AttendeeIDs = []string{}
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				in.AttendeeIDs = append(in.AttendeeIDs, v)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// HandleComplete moves a planning laag to Completed with its final cost,
// fun meter, attendees and photos, then notifies attendees. It accepts
// JSON, or multipart when photos are attached (field "images").
// POST /groups/{id}/laags/{laagID}/complete
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	a, ok := h.actor(w, r)
	if !ok {
		return
	}

	var in completeInput
	multipartBody := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	if multipartBody {
		if !h.parseMultipart(w, r) {
			return
		}
		defer r.MultipartForm.RemoveAll()
		if errs := readCompleteForm(r, &in); errs != nil {
			h.ErrLog.Invalid(w, r, errs)
			return
		}
	} else if err := httpx.DecodeJSON(w, r, &in); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode laag complete failed", err, "Invalid request body.")
		return
	}
	if !h.ErrLog.Validate(w, r, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	l, ok := h.loadLaag(ctx, w, r, a)
	if !ok {
		return
	}
	// Checked before any photo is stored; the transition checks again.
	if err := laagpolicy.CanChangeStatus(a, l, models.StatusCompleted); err != nil {
		h.writeStoreError(w, r, "complete laag denied", err)
		return
	}
	attendees, ok := h.checkAttendees(ctx, w, r, l.GroupID, in.AttendeeIDs)
	if !ok {
		return
	}

	var paths []string
	if multipartBody && r.MultipartForm != nil && len(r.MultipartForm.File["images"]) > 0 {
		if paths, ok = h.saveImages(ctx, w, r, r.MultipartForm.File["images"]); !ok {
			return
		}
	}

	out, err := h.Transitions.Complete(ctx, l.ID, a, transitions.CompleteInput{
		Completion: laagstore.Completion{
			ActualCost: in.ActualCost,
			FunMeter:   in.FunMeter,
			Privacy:    models.Privacy(in.Privacy),
			Type:       htmlsanitize.StripTags(in.Type),
		},
		Attendees: attendees,
		Images:    paths,
	})
	if err != nil {
		h.writeStoreError(w, r, "complete laag failed", err)
		return
	}
	h.Log.Info("laag completed",
		zap.String("laag_id", l.ID.Hex()),
		zap.Int("images", len(paths)),
		zap.Int("recipients", len(out.Recipients)),
		zap.Bool("fan_out_failed", out.FanOutFailed))
	h.Audit.LaagStatusChanged(r.Context(), r, a.ID, l.GroupID, l.ID, out.Laag.Status)
	httpx.WriteJSON(w, http.StatusOK, out)
}
