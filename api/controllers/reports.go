package controllers

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salesreport/api/responses"
	"github.com/angelmondragon/salesreport/api/validators"
	"github.com/angelmondragon/salesreport/internal/export"
	"github.com/angelmondragon/salesreport/internal/reports"
	"github.com/angelmondragon/salesreport/internal/salesreport"
	pkgerrors "github.com/angelmondragon/salesreport/pkg/errors"
	"github.com/angelmondragon/salesreport/pkg/logger"
	pkgpagination "github.com/angelmondragon/salesreport/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type createReportRequest struct {
	salesreport.Dataset
	SkipInvalidRecords bool `json:"skip_invalid_records"`
}

// ReportsCreate analyzes the posted dataset and stores the run.
func ReportsCreate(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		var req createReportRequest
		if err := validators.DecodeDocument(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dataset := req.Dataset
		run, err := svc.Generate(r.Context(), reports.GenerateInput{
			Dataset:            &dataset,
			Source:             reports.SourceAPI,
			SkipInvalidRecords: req.SkipInvalidRecords,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if run.Cached {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, run)
	}
}

func ReportsList(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pkgpagination.DefaultLimit, 1, pkgpagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), reports.ListParams{
			Params: pkgpagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ReportsGet(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := loadRun(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, run)
	}
}

// ReportsExportXLSX streams a stored run as a workbook.
func ReportsExportXLSX(svc reports.Service, sheet string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, ok := loadRun(w, r, svc, logg)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, sheet, run.Rows); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook"))
			return
		}

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="report-`+run.ID.String()+`.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func loadRun(w http.ResponseWriter, r *http.Request, svc reports.Service, logg *logger.Logger) (*reports.Run, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
		return nil, false
	}
	runID, err := validators.ParseUUID(chi.URLParam(r, "runId"), "run_id")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	run, err := svc.Get(r.Context(), runID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return run, true
}
