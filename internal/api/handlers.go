package api

import (
	"fmt"
	"net/http"
	"strconv"

	"shareit/internal/middleware"
	"shareit/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := callerID(r)
	if err != nil {
		s.badRequest(w, r, err.Error())
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		s.badRequest(w, r, err.Error())
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeBody(r, dst); err != nil {
		s.badRequest(w, r, err.Error())
		return false
	}
	return true
}

func (s *HTTPServer) state(w http.ResponseWriter, r *http.Request) (models.BookingState, bool) {
	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return state, true
}

// users

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDtos(users))
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	user, err := s.svc.Users.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if !s.decode(w, r, &in) {
		return
	}
	user := &models.User{}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}

	created, err := s.svc.Users.Create(r.Context(), user)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toUserDto(created))
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	var in userInput
	if !s.decode(w, r, &in) {
		return
	}

	user, err := s.svc.Users.Update(r.Context(), id, models.UserPatch{Name: in.Name, Email: in.Email})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	user, err := s.svc.Users.Delete(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserDto(user))
}

// items

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	details, err := s.svc.Items.ListByHost(r.Context(), hostID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toItemDetailsDtos(details))
}

// handleSearchItems is public; the identity header is not required.
func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toItemDtos(items))
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.caller(w, r); !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	details, err := s.svc.Items.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toItemDetailsDto(details))
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	var in itemInput
	if !s.decode(w, r, &in) {
		return
	}
	item := &models.Item{RequestID: in.RequestID}
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Available != nil {
		item.Available = *in.Available
	}

	created, err := s.svc.Items.Create(r.Context(), hostID, item)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toItemDto(created))
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	var in itemInput
	if !s.decode(w, r, &in) {
		return
	}

	patch := models.ItemPatch{Name: in.Name, Description: in.Description, Available: in.Available}
	item, err := s.svc.Items.Update(r.Context(), hostID, id, patch)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toItemDto(item))
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	item, err := s.svc.Items.Delete(r.Context(), hostID, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toItemDto(item))
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	authorID, ok := s.caller(w, r)
	if !ok {
		return
	}
	itemID, ok := s.id(w, r)
	if !ok {
		return
	}
	var in commentInput
	if !s.decode(w, r, &in) {
		return
	}

	comment, err := s.svc.Items.AddComment(r.Context(), authorID, itemID, in.Text)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toCommentDto(comment))
}

// bookings

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	state, ok := s.state(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.FindByUser(r.Context(), userID, state)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookingDtos(bookings))
}

func (s *HTTPServer) handleListOwnerBookings(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	state, ok := s.state(w, r)
	if !ok {
		return
	}
	bookings, err := s.svc.Bookings.FindByOwner(r.Context(), hostID, state)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookingDtos(bookings))
}

func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	state, ok := s.state(w, r)
	if !ok {
		return
	}
	data, err := s.svc.Bookings.ExportOwner(r.Context(), hostID, state)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bookings_%d.xlsx"`, hostID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	booking, err := s.svc.Bookings.FindByID(r.Context(), userID, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookingDto(booking))
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, ok := s.caller(w, r)
	if !ok {
		return
	}
	var in bookingInput
	if !s.decode(w, r, &in) {
		return
	}
	if in.ItemID == nil || in.Start == nil || in.End == nil {
		s.badRequest(w, r, "itemId, start and end are required")
		return
	}

	booking, err := s.svc.Bookings.Create(r.Context(), bookerID, *in.ItemID, in.Start.Time, in.End.Time)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookingDto(booking))
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	hostID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		s.badRequest(w, r, "approved must be true or false")
		return
	}

	booking, err := s.svc.Bookings.Approve(r.Context(), hostID, id, approved)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toBookingDto(booking))
}

// requests

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	var in requestInput
	if !s.decode(w, r, &in) {
		return
	}

	req, err := s.svc.Requests.Create(r.Context(), userID, in.Description)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toRequestDto(&models.RequestDetails{Request: *req}))
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	details, err := s.svc.Requests.ListOwn(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toRequestDtos(details))
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	details, err := s.svc.Requests.ListOthers(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toRequestDtos(details))
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := s.id(w, r)
	if !ok {
		return
	}
	details, err := s.svc.Requests.Get(r.Context(), userID, id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toRequestDto(details))
}
