package bookings

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"outings/utils"
)

// receiptQRPayload returns "bookingId|activityId|signature" where the
// signature is an HMAC over the first two parts.
func (h *Handler) receiptQRPayload(bookingID, activityID string) string {
	data := fmt.Sprintf("%s|%s", bookingID, activityID)
	mac := hmac.New(sha256.New, h.SigningSecret)
	mac.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// Receipt renders an owner-only PDF receipt for a booking, with the
// activity details and a signed QR code.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	booking, err := h.Svc.UserBookingByID(ps.ByName("id"), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}

	enriched, err := h.Svc.Enrich(booking)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
		return
	}

	qrPNG, err := qrcode.Encode(h.receiptQRPayload(booking.ID, booking.ActivityID), qrcode.Medium, 256)
	if err != nil {
		h.Log.Error("failed to generate receipt QR code", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	amount := enriched.Activity.Price * float64(booking.Participants)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking: %s", booking.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Activity: %s", enriched.Activity.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s", enriched.Activity.Date))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Location: %s", enriched.Activity.Location))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Participants: %d", booking.Participants))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f", amount))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Payment status: %s", enriched.PaymentStatus))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		h.Log.Error("failed to render receipt PDF", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+booking.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
