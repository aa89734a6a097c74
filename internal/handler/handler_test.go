package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// newJSONContext builds an echo context carrying a JSON body and an
// authenticated NORMAL user, without touching any repository.
func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))
	c.Set("role", "NORMAL")
	return c, rec
}

func TestCreateBookingValidation(t *testing.T) {
	h := &BookingHandler{}

	cases := []struct {
		name string
		body string
	}{
		{"missing slot id", `{"topic":"career advice"}`},
		{"empty topic", `{"time_slot_id":3}`},
		{"malformed json", `{"time_slot_id":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/consultants/bookings", tc.body)
			if err := h.CreateBooking(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateBookingRequiresAuth(t *testing.T) {
	h := &BookingHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/consultants/bookings", strings.NewReader(`{"time_slot_id":1,"topic":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.CreateBooking(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateBookingStatusValidation(t *testing.T) {
	h := &BookingHandler{}

	t.Run("invalid id", func(t *testing.T) {
		c, rec := newJSONContext(t, http.MethodPut, "/", `{"status":"Approved"}`)
		c.SetParamNames("id")
		c.SetParamValues("abc")
		if err := h.UpdateBookingStatus(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		c, rec := newJSONContext(t, http.MethodPut, "/", `{"status":"Confirmed"}`)
		c.SetParamNames("id")
		c.SetParamValues("5")
		if err := h.UpdateBookingStatus(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestCancelBookingInvalidID(t *testing.T) {
	h := &BookingHandler{}
	c, rec := newJSONContext(t, http.MethodPost, "/", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("0")
	if err := h.CancelBooking(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateTimeSlotValidation(t *testing.T) {
	h := &SlotHandler{}

	cases := []struct {
		name string
		body string
	}{
		{"missing times", `{"notes":"office hours"}`},
		{"end before start", `{"start_time":"2026-09-07T10:00:00Z","end_time":"2026-09-07T09:00:00Z"}`},
		{"end equals start", `{"start_time":"2026-09-07T10:00:00Z","end_time":"2026-09-07T10:00:00Z"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/consultants/timeslots", tc.body)
			if err := h.CreateTimeSlot(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCreateTimeSlotsBulkValidation(t *testing.T) {
	h := &SlotHandler{}

	cases := []struct {
		name string
		body string
	}{
		{"bad start date", `{"start_date":"07-09-2026","end_date":"2026-09-14","slot_start_time":"09:00","slot_end_time":"11:00","slot_duration_minutes":60}`},
		{"bad time of day", `{"start_date":"2026-09-07","end_date":"2026-09-14","slot_start_time":"9am","slot_end_time":"11:00","slot_duration_minutes":60}`},
		{"weekday out of range", `{"start_date":"2026-09-07","end_date":"2026-09-14","slot_start_time":"09:00","slot_end_time":"11:00","slot_duration_minutes":60,"days_of_week":[7]}`},
		{"zero duration", `{"start_date":"2026-09-07","end_date":"2026-09-14","slot_start_time":"09:00","slot_end_time":"11:00","slot_duration_minutes":0}`},
		{"end date before start date", `{"start_date":"2026-09-14","end_date":"2026-09-07","slot_start_time":"09:00","slot_end_time":"11:00","slot_duration_minutes":60}`},
		{"window end before window start", `{"start_date":"2026-09-07","end_date":"2026-09-14","slot_start_time":"11:00","slot_end_time":"09:00","slot_duration_minutes":60}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/consultants/timeslots/bulk", tc.body)
			if err := h.CreateTimeSlotsBulk(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestDeleteTimeSlotInvalidID(t *testing.T) {
	h := &SlotHandler{}
	c, rec := newJSONContext(t, http.MethodDelete, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-number")
	if err := h.DeleteTimeSlot(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetAvailableTimeSlotsBadInstructorID(t *testing.T) {
	h := &ConsultantHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/consultants/timeslots?instructor_id=zero", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetAvailableTimeSlots(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := &AuthHandler{}

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"password":"secret","full_name":"A Person"}`},
		{"missing password", `{"email":"a@b.c","full_name":"A Person"}`},
		{"missing full name", `{"email":"a@b.c","password":"secret"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newJSONContext(t, http.MethodPost, "/v1/auth/register", tc.body)
			if err := h.Register(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestGetUserIDTypes(t *testing.T) {
	e := echo.New()
	for _, v := range []interface{}{uint64(42), int(42), int64(42), float64(42), "42"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("user_id", v)
		got, err := getUserID(c)
		if err != nil {
			t.Fatalf("getUserID(%T) error: %v", v, err)
		}
		if got != 42 {
			t.Fatalf("getUserID(%T) = %d, want 42", v, got)
		}
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, err := getUserID(c); err == nil {
		t.Fatal("expected error for missing user_id")
	}
}
