package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/DRSN-tech/shop-orders/internal/domain"
	"github.com/DRSN-tech/shop-orders/internal/usecase"
	"github.com/DRSN-tech/shop-orders/pkg/e"
	"github.com/DRSN-tech/shop-orders/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderUsecase usecase.OrderUC
	logger       logger.Logger
}

func NewOrderHandler(orderUsecase usecase.OrderUC, logger logger.Logger) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase, logger: logger}
}

// createOrder
//
//	@Summary		Оформление заказа
//	@Description	Проверяет остатки, списывает их и сохраняет заказ атомарно: при любой ошибке ничего не меняется
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Заказ"
//	@Success		201		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации или недостаточно товара"
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Router			/orders [post]
func (o *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	order, err := o.orderUsecase.CreateOrder(r.Context(), req.toCreateOrderReq())
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toOrderResponse(order))
}

// getOrder
//
//	@Summary	Заказ по id
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		int	true	"ID заказа"
//	@Success	200	{object}	OrderResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (o *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	order, err := o.orderUsecase.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

// getOrdersByCustomer
//
//	@Summary		Заказы покупателя
//	@Description	Точное совпадение email
//	@Tags			orders
//	@Produce		json
//	@Param			email	path	string	true	"Email покупателя"
//	@Success		200		{array}	OrderResponse
//	@Router			/orders/customer/{email} [get]
func (o *OrderHandler) getOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	// chi отдаёт параметр из RawPath, если клиент экранировал "@" как %40
	if unescaped, err := url.PathUnescape(email); err == nil {
		email = unescaped
	}

	orders, err := o.orderUsecase.GetByCustomerEmail(r.Context(), email)
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrOrderResponse(orders))
}

// listOrdersByStatus
//
//	@Summary	Заказы в статусе
//	@Tags		orders
//	@Produce	json
//	@Param		status	query		string	true	"Статус"	Enums(PENDING, CONFIRMED, PROCESSING, SHIPPED, DELIVERED, CANCELLED)
//	@Success	200		{array}		OrderResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/orders [get]
func (o *OrderHandler) listOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := parseStatus(r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	orders, err := o.orderUsecase.GetByStatus(r.Context(), status)
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toArrOrderResponse(orders))
}

// updateOrderStatus
//
//	@Summary		Смена статуса заказа
//	@Description	Статус перезаписывается без проверки допустимости перехода
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"ID заказа"
//	@Param			request	body		UpdateOrderStatusRequest	true	"Новый статус"
//	@Success		200		{object}	OrderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/orders/{id}/status [put]
func (o *OrderHandler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	var req UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	var raw string
	if req.Status != nil {
		raw = *req.Status
	}
	status, err := parseStatus(raw)
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	order, err := o.orderUsecase.UpdateStatus(r.Context(), id, status)
	if err != nil {
		WriteError(w, r, o.logger, err)
		return
	}

	o.logger.Infof("order %d status set to %s", order.ID, order.Status)
	WriteSuccess(w, http.StatusOK, toOrderResponse(order))
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	v := e.NewValidationError()
	if raw == "" {
		v.Add("status", "Status is required")
		return "", v
	}

	// Регистр значим: "shipped" не то же самое, что SHIPPED
	status, ok := domain.ParseOrderStatus(raw)
	if !ok {
		v.Add("status", "Unknown order status: "+raw)
		return "", v
	}

	return status, nil
}
