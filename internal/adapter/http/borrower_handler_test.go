package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lendledger/internal/confidential"
	borrowerDomain "lendledger/internal/domain/borrower"
	"lendledger/internal/domain/grant"
	"lendledger/internal/domain/uow"
	"lendledger/internal/testutil/borrowermock"
	"lendledger/internal/testutil/grantmock"
	"lendledger/internal/testutil/uowmock"
	borrowerUC "lendledger/internal/usecase/borrower"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type borrowerFixture struct {
	repo   *borrowermock.Repo
	grants *grantmock.Store
	keeper *confidential.Keeper
	h      *BorrowerHandler
}

func newBorrowerFixture(t *testing.T) *borrowerFixture {
	t.Helper()
	f := &borrowerFixture{repo: &borrowermock.Repo{}, grants: grantmock.NewStore()}
	k, err := confidential.NewKeeperFromFile("", grant.NewEngine(f.grants))
	if err != nil {
		t.Fatalf("keeper: %v", err)
	}
	f.keeper = k
	tx := uowmock.New().WithWithinTx(func(ctx context.Context, fn func(uow.Repos) error) error {
		return fn(uow.Repos{Borrowers: f.repo, Grants: f.grants})
	})
	f.h = NewBorrowerHandler(borrowerUC.NewUsecase(f.repo, tx, k, strings.Repeat("c", 32), nil))
	return f
}

// sealedProfile builds a profile whose score is encrypted under this
// fixture's keeper, with the owner's self-grant already in place.
func (f *borrowerFixture) sealedProfile(t *testing.T, ident string, score uint64) *borrowerDomain.Profile {
	t.Helper()
	ct, err := f.keeper.Encrypt(confidential.ScoreField(ident), score)
	if err != nil {
		t.Fatalf("encrypt score: %v", err)
	}
	blob, err := confidential.MarshalField(ct)
	if err != nil {
		t.Fatalf("marshal score: %v", err)
	}
	g := &grant.AccessGrant{Field: confidential.ScoreField(ident), Viewer: ident}
	if err := f.grants.Create(context.Background(), g); err != nil {
		t.Fatalf("self grant: %v", err)
	}
	return &borrowerDomain.Profile{
		Identity:  ident,
		EncScore:  blob,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRegisterBorrower_Success(t *testing.T) {
	e := newEchoWithValidator()
	f := newBorrowerFixture(t)
	f.repo.GetByIdentityFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
		return nil, gorm.ErrRecordNotFound
	}
	var created *borrowerDomain.Profile
	f.repo.CreateFn = func(_ context.Context, p *borrowerDomain.Profile) error {
		created = p
		return nil
	}

	ident := strings.Repeat("a", 32)
	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowers", mustJSON(map[string]any{"credit_score": 750}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, ident)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := f.h.Register(c); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var dto borrowerUC.ProfileDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.Identity != ident || !dto.IsActive || dto.TotalLoans != 0 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if created == nil || len(created.EncScore) == 0 {
		t.Fatalf("profile not persisted with a sealed score")
	}
	if ok, _ := f.grants.Exists(context.Background(), confidential.ScoreField(ident), ident); !ok {
		t.Fatalf("owner self-grant missing")
	}
	if ok, _ := f.grants.Exists(context.Background(), confidential.ScoreField(ident), grant.PublicViewer); ok {
		t.Fatalf("private registration must not grant the public viewer")
	}
}

func TestRegisterBorrower_MakePublic(t *testing.T) {
	e := newEchoWithValidator()
	f := newBorrowerFixture(t)
	f.repo.GetByIdentityFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
		return nil, gorm.ErrRecordNotFound
	}

	ident := strings.Repeat("a", 32)
	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowers", mustJSON(map[string]any{
		"credit_score": 640,
		"make_public":  true,
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, ident)
	rec := httptest.NewRecorder()

	if err := f.h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if ok, _ := f.grants.Exists(context.Background(), confidential.ScoreField(ident), grant.PublicViewer); !ok {
		t.Fatalf("public registration must grant the wildcard viewer")
	}
}

func TestRegisterBorrower_BadRequests(t *testing.T) {
	tests := []struct {
		name       string
		actor      string
		body       *bytes.Reader
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing actor header",
			actor:      "",
			body:       mustJSON(map[string]any{"credit_score": 700}),
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "missing or invalid Ld-Actor-Id header",
		},
		{
			name:       "malformed actor header",
			actor:      "not-an-identity",
			body:       mustJSON(map[string]any{"credit_score": 700}),
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "missing or invalid Ld-Actor-Id header",
		},
		{
			name:       "broken json body",
			actor:      strings.Repeat("a", 32),
			body:       bytes.NewReader([]byte("{not-json")),
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "invalid body",
		},
		{
			name:       "score below band",
			actor:      strings.Repeat("a", 32),
			body:       mustJSON(map[string]any{"credit_score": 299}),
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "credit score outside the 300-850 band",
		},
		{
			name:       "score above band",
			actor:      strings.Repeat("a", 32),
			body:       mustJSON(map[string]any{"credit_score": 851}),
			wantStatus: stdhttp.StatusBadRequest,
			wantError:  "credit score outside the 300-850 band",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEchoWithValidator()
			f := newBorrowerFixture(t)
			f.repo.GetByIdentityFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
				return nil, gorm.ErrRecordNotFound
			}

			req := httptest.NewRequest(stdhttp.MethodPost, "/borrowers", tt.body)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tt.actor != "" {
				req.Header.Set(HeaderActorID, tt.actor)
			}
			rec := httptest.NewRecorder()

			if err := f.h.Register(e.NewContext(req, rec)); err != nil {
				t.Fatalf("Register error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var got ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if got.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", got.Error, tt.wantError)
			}
		})
	}
}

func TestRegisterBorrower_MissingScore(t *testing.T) {
	e := newEchoWithValidator()
	f := newBorrowerFixture(t)

	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowers", mustJSON(map[string]any{"make_public": true}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, strings.Repeat("a", 32))
	rec := httptest.NewRecorder()

	if err := f.h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var got ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(got.Details, "CreditScore", "required") {
		t.Fatalf("details missing CreditScore required, got %+v", got.Details)
	}
}

func TestRegisterBorrower_Duplicate(t *testing.T) {
	e := newEchoWithValidator()
	f := newBorrowerFixture(t)
	ident := strings.Repeat("a", 32)
	f.repo.GetByIdentityFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
		return &borrowerDomain.Profile{Identity: ident, IsActive: true}, nil
	}

	req := httptest.NewRequest(stdhttp.MethodPost, "/borrowers", mustJSON(map[string]any{"credit_score": 700}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderActorID, ident)
	rec := httptest.NewRecorder()

	if err := f.h.Register(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var got ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.Error != "borrower already registered" {
		t.Fatalf("error = %q", got.Error)
	}
}

func TestGetBorrower(t *testing.T) {
	ident := strings.Repeat("a", 32)
	tests := []struct {
		name       string
		param      string
		found      bool
		wantStatus int
	}{
		{name: "found", param: ident, found: true, wantStatus: stdhttp.StatusOK},
		{name: "unknown identity", param: strings.Repeat("f", 32), found: false, wantStatus: stdhttp.StatusNotFound},
		{name: "malformed identity", param: "xyz", found: false, wantStatus: stdhttp.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEchoWithValidator()
			f := newBorrowerFixture(t)
			f.repo.GetByIdentityFn = func(_ context.Context, got string) (*borrowerDomain.Profile, error) {
				if !tt.found {
					return nil, gorm.ErrRecordNotFound
				}
				return &borrowerDomain.Profile{Identity: got, TotalLoans: 3, SuccessfulRepayments: 2, IsActive: true}, nil
			}

			req := httptest.NewRequest(stdhttp.MethodGet, "/borrowers/"+tt.param, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("identity")
			c.SetParamValues(tt.param)

			if err := f.h.Get(c); err != nil {
				t.Fatalf("Get error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != stdhttp.StatusOK {
				return
			}
			var dto borrowerUC.ProfileDTO
			if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if dto.Identity != ident || dto.TotalLoans != 3 || dto.SuccessfulRepayments != 2 {
				t.Fatalf("unexpected dto: %+v", dto)
			}
		})
	}
}

func TestRevealScore(t *testing.T) {
	owner := strings.Repeat("a", 32)
	stranger := strings.Repeat("d", 32)
	tests := []struct {
		name       string
		viewer     string
		wantStatus int
	}{
		{name: "owner sees own score", viewer: owner, wantStatus: stdhttp.StatusOK},
		{name: "stranger denied", viewer: stranger, wantStatus: stdhttp.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEchoWithValidator()
			f := newBorrowerFixture(t)
			p := f.sealedProfile(t, owner, 750)
			f.repo.GetByIdentityFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
				return p, nil
			}

			req := httptest.NewRequest(stdhttp.MethodGet, "/borrowers/"+owner+"/score", nil)
			req.Header.Set(HeaderActorID, tt.viewer)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("identity")
			c.SetParamValues(owner)

			if err := f.h.RevealScore(c); err != nil {
				t.Fatalf("RevealScore error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != stdhttp.StatusOK {
				var got ErrorResponse
				json.Unmarshal(rec.Body.Bytes(), &got)
				if got.Error != "field not disclosed to caller" {
					t.Fatalf("error = %q", got.Error)
				}
				return
			}
			var got struct {
				Identity    string `json:"identity"`
				CreditScore uint64 `json:"credit_score"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if got.Identity != owner || got.CreditScore != 750 {
				t.Fatalf("unexpected body: %+v", got)
			}
		})
	}
}

func TestPauseAndUnpause(t *testing.T) {
	admin := strings.Repeat("c", 32)
	ident := strings.Repeat("a", 32)

	t.Run("admin pauses then unpauses", func(t *testing.T) {
		e := newEchoWithValidator()
		f := newBorrowerFixture(t)
		p := &borrowerDomain.Profile{Identity: ident, IsActive: true}
		f.repo.GetByIdentityForUpdateFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
			return p, nil
		}

		req := httptest.NewRequest(stdhttp.MethodPost, "/admin/borrowers/"+ident+"/pause", nil)
		req.Header.Set(HeaderActorID, admin)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(ident)

		if err := f.h.Pause(c); err != nil {
			t.Fatalf("Pause error: %v", err)
		}
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if p.IsActive {
			t.Fatalf("profile still active after pause")
		}
		var got struct {
			Identity string `json:"identity"`
			IsActive bool   `json:"is_active"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if got.Identity != ident || got.IsActive {
			t.Fatalf("unexpected body: %+v", got)
		}

		req = httptest.NewRequest(stdhttp.MethodPost, "/admin/borrowers/"+ident+"/unpause", nil)
		req.Header.Set(HeaderActorID, admin)
		rec = httptest.NewRecorder()
		c = e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(ident)

		if err := f.h.Unpause(c); err != nil {
			t.Fatalf("Unpause error: %v", err)
		}
		if rec.Code != stdhttp.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if !p.IsActive {
			t.Fatalf("profile still paused after unpause")
		}
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		e := newEchoWithValidator()
		f := newBorrowerFixture(t)

		req := httptest.NewRequest(stdhttp.MethodPost, "/admin/borrowers/"+ident+"/pause", nil)
		req.Header.Set(HeaderActorID, strings.Repeat("d", 32))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(ident)

		if err := f.h.Pause(c); err != nil {
			t.Fatalf("Pause error: %v", err)
		}
		if rec.Code != stdhttp.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		var got ErrorResponse
		json.Unmarshal(rec.Body.Bytes(), &got)
		if got.Error != "admin only" {
			t.Fatalf("error = %q", got.Error)
		}
	})

	t.Run("unknown borrower", func(t *testing.T) {
		e := newEchoWithValidator()
		f := newBorrowerFixture(t)
		f.repo.GetByIdentityForUpdateFn = func(context.Context, string) (*borrowerDomain.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		}

		req := httptest.NewRequest(stdhttp.MethodPost, "/admin/borrowers/"+ident+"/pause", nil)
		req.Header.Set(HeaderActorID, admin)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("identity")
		c.SetParamValues(ident)

		if err := f.h.Pause(c); err != nil {
			t.Fatalf("Pause error: %v", err)
		}
		if rec.Code != stdhttp.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}
