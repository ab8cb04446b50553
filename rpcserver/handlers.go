package rpcserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"bookingengine/native/booking"
)

// proofFromRequest extracts and verifies the bearer token carrying the
// caller's capability proof, the same Authorization-header convention as
// gateway/middleware.Authenticator.extractBearer.
func (s *Server) proofFromRequest(r *http.Request) (booking.Proof, *ModuleError) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return booking.Proof{}, &ModuleError{HTTPStatus: http.StatusUnauthorized, Code: codeInvalidCredential, Message: "missing bearer token"}
	}
	proof, err := s.issuer.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return booking.Proof{}, &ModuleError{HTTPStatus: http.StatusUnauthorized, Code: codeInvalidCredential, Message: "invalid token"}
	}
	return proof, nil
}

func pathUint64(r *http.Request, key string) (uint64, *ModuleError) {
	raw := chi.URLParam(r, key)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: "invalid " + key}
	}
	return v, nil
}

func writeModuleError(w http.ResponseWriter, modErr *ModuleError) {
	writeJSON(w, modErr.HTTPStatus, modErr)
}

type newUserResponse struct {
	UserID uint64 `json:"userId"`
	Token  string `json:"token"`
}

// handleNewUser implements [anyone] new_user. The response carries a signed
// ProofKindUser credential, per SPEC_FULL.md's commitment that new_user
// mints a JWT the same way get_arbitrator_badge and reservation-credential
// minting do.
func (s *Server) handleNewUser(w http.ResponseWriter, r *http.Request) {
	id := s.engine.NewUser()
	token, err := s.issuer.Mint(booking.ProofKindUser, id, 0)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "failed to mint credential"})
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse{UserID: id, Token: token})
}

type newItemRequest struct {
	Currency                   string `json:"currency"`
	MinimumReservationPeriod   int64  `json:"minimumReservationPeriod"`
	MinCancellationForewarning int64  `json:"minCancellationForewarning"`
}

// handleNewItem implements [user] new_item.
func (s *Server) handleNewItem(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req newItemRequest
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, err := s.engine.NewItem(proof, req.Currency, req.MinimumReservationPeriod, req.MinCancellationForewarning)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"itemId": itemID})
}

type availabilityRequest struct {
	Now       int64  `json:"now"`
	StartTime int64  `json:"startTime"`
	Available bool   `json:"available"`
	UnitPrice string `json:"unitPrice"`
	HasPrice  bool   `json:"hasPrice"`
}

// handleAddOrModifyAvailability implements [item owner]
// add_or_modify_availability_interval.
func (s *Server) handleAddOrModifyAvailability(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req availabilityRequest
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	unitPrice := booking.ZeroDecimal()
	if req.HasPrice {
		parsed, err := booking.ParseDecimal(req.UnitPrice)
		if err != nil {
			writeModuleError(w, &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: err.Error()})
			return
		}
		unitPrice = parsed
	}
	if err := s.engine.AddOrModifyAvailabilityInterval(proof, req.Now, itemID, req.StartTime, req.Available, unitPrice, req.HasPrice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type newReservationRequest struct {
	Now            int64  `json:"now"`
	StartTime      int64  `json:"startTime"`
	EndTime        int64  `json:"endTime"`
	BucketAmount   string `json:"bucketAmount"`
	BucketCurrency string `json:"bucketCurrency"`
}

type newReservationResponse struct {
	ReservationID uint64 `json:"reservationId"`
	ChangeAmount  string `json:"changeAmount"`
	Token         string `json:"token"`
}

// handleNewReservation implements [user] new_reservation. On success it
// mints the ProofKindReservation credential scoped to the new reservation,
// the same way engine.NewReservation's doc comment says the auth package
// should: Subject is the booking customer, Resource is the reservation id.
// Without this the credential-gated operations (cancellation by customer,
// get_refund, start_dispute) would be unreachable over HTTP.
func (s *Server) handleNewReservation(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req newReservationRequest
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	amount, err := booking.ParseDecimal(req.BucketAmount)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: err.Error()})
		return
	}
	bucket := booking.NewBucket(req.BucketCurrency, amount)
	reservationID, change, err := s.engine.NewReservation(proof, req.Now, itemID, req.StartTime, req.EndTime, bucket)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.issuer.Mint(booking.ProofKindReservation, proof.Subject, reservationID)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "failed to mint credential"})
		return
	}
	writeJSON(w, http.StatusCreated, newReservationResponse{ReservationID: reservationID, ChangeAmount: change.Amount.String(), Token: token})
}

type bucketResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// handleCancellationByCustomer implements [reservation credential]
// reservation_cancellation_by_customer.
func (s *Server) handleCancellationByCustomer(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		Now int64 `json:"now"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	bucket, err := s.engine.ReservationCancellationByCustomer(proof, req.Now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketResponse{Amount: bucket.Amount.String(), Currency: bucket.Currency})
}

// handleCancellationByOwner implements [item owner]
// reservation_cancellation_by_owner.
func (s *Server) handleCancellationByOwner(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	reservationID, modErr := pathUint64(r, "reservationID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	if err := s.engine.ReservationCancellationByOwner(proof, itemID, reservationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetRefund implements [reservation credential] get_refund.
func (s *Server) handleGetRefund(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	bucket, err := s.engine.GetRefund(proof)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketResponse{Amount: bucket.Amount.String(), Currency: bucket.Currency})
}

// handleStartDispute implements [reservation credential] start_dispute.
func (s *Server) handleStartDispute(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	if err := s.engine.StartDispute(proof); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleOfferPartialRefund implements [item owner] offer_partial_refund.
func (s *Server) handleOfferPartialRefund(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	reservationID, modErr := pathUint64(r, "reservationID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		RefundAmount string `json:"refundAmount"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	amount, err := booking.ParseDecimal(req.RefundAmount)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: err.Error()})
		return
	}
	if err := s.engine.OfferPartialRefund(proof, itemID, reservationID, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleDisputeVote implements [arbitrator] dispute_vote.
func (s *Server) handleDisputeVote(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	reservationID, modErr := pathUint64(r, "reservationID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		RefundPercentage string `json:"refundPercentage"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	percentage, err := booking.ParseDecimal(req.RefundPercentage)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusBadRequest, Code: codeBadArgument, Message: err.Error()})
		return
	}
	terminated, err := s.engine.DisputeVote(proof, itemID, reservationID, percentage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"terminated": terminated})
}

// handleGetPayment implements [item owner] get_payment.
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	itemID, modErr := pathUint64(r, "itemID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	reservationID, modErr := pathUint64(r, "reservationID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		Now int64 `json:"now"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	bucket, err := s.engine.GetPayment(proof, req.Now, itemID, reservationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucketResponse{Amount: bucket.Amount.String(), Currency: bucket.Currency})
}

// handleSetPaymentDelay implements [admin] set_payment_delay.
func (s *Server) handleSetPaymentDelay(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		Seconds int64 `json:"seconds"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	if err := s.engine.SetPaymentDelay(proof, req.Seconds); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleSetMinArbitrators implements [admin] set_min_arbitrators.
func (s *Server) handleSetMinArbitrators(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	var req struct {
		MinArbitrators int `json:"minArbitrators"`
	}
	if modErr := decodeBody(r, &req); modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	if err := s.engine.SetMinArbitrators(proof, req.MinArbitrators); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type newArbitratorResponse struct {
	ArbitratorID uint64 `json:"arbitratorId"`
	Token        string `json:"token"`
}

// handleGetArbitratorBadge implements [admin] get_arbitrator_badge. The
// response carries a signed ProofKindArbitrator credential scoped to the
// new arbitrator id, without which dispute_vote would be unreachable over
// HTTP.
func (s *Server) handleGetArbitratorBadge(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	id, err := s.engine.GetArbitratorBadge(proof)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.issuer.Mint(booking.ProofKindArbitrator, id, 0)
	if err != nil {
		writeModuleError(w, &ModuleError{HTTPStatus: http.StatusInternalServerError, Code: codeServerError, Message: "failed to mint credential"})
		return
	}
	writeJSON(w, http.StatusCreated, newArbitratorResponse{ArbitratorID: id, Token: token})
}

// handleRevokeArbitratorBadge implements the supplemented admin-only
// revoke_arbitrator_badge operation.
func (s *Server) handleRevokeArbitratorBadge(w http.ResponseWriter, r *http.Request) {
	proof, modErr := s.proofFromRequest(r)
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	arbitratorID, modErr := pathUint64(r, "arbitratorID")
	if modErr != nil {
		writeModuleError(w, modErr)
		return
	}
	if err := s.engine.RevokeArbitratorBadge(proof, arbitratorID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
