package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/appointment"
	linkRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/bookinglink"
	salonRepo "github.com/m04kA/SMC-SalonBooking/internal/infra/storage/salon"
	"github.com/m04kA/SMC-SalonBooking/internal/integrations/identity"
	"github.com/m04kA/SMC-SalonBooking/internal/service/validator"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/txmanager"
)

const tracerName = "github.com/m04kA/SMC-SalonBooking/internal/usecase/create_booking"

// UseCase use case для создания записи (оркестратор)
type UseCase struct {
	salonRepo       SalonRepository
	appointmentRepo AppointmentRepository
	feeRepo         FeeRepository
	linkRepo        LinkRepository
	identityClient  IdentityClient
	validator       Validator
	txManager       TransactionManager
	metrics         MetricsRecorder
	defaultLocation *time.Location
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	salonRepo SalonRepository,
	appointmentRepo AppointmentRepository,
	feeRepo FeeRepository,
	linkRepo LinkRepository,
	identityClient IdentityClient,
	validator Validator,
	txManager TransactionManager,
	metrics MetricsRecorder,
	defaultLocation *time.Location,
	logger Logger,
) *UseCase {
	return &UseCase{
		salonRepo:       salonRepo,
		appointmentRepo: appointmentRepo,
		feeRepo:         feeRepo,
		linkRepo:        linkRepo,
		identityClient:  identityClient,
		validator:       validator,
		txManager:       txManager,
		metrics:         metrics,
		defaultLocation: defaultLocation,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
// Проверка и вставка выполняются в одной сериализуемой транзакции с блокировками:
// либо запись создана целиком, либо ничего не сохранено.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CreateBooking")
	defer func() {
		uc.recordOutcome(resp, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("CreateBooking: client=%d, salon=%d, service=%d, date=%s, time=%s",
		req.ClientID, req.SalonID, req.ServiceID, req.Date, req.Time)

	// 1. Валидация входных данных
	parsed, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Определяем клиента (по ссылке или авторизованного)
	client, err := uc.resolveClient(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("salon.id", client.salonID),
		attribute.Int64("client.id", client.clientID),
		attribute.Int64("service.id", req.ServiceID),
	)

	// 3. Салон, услуга и выбранный сотрудник
	salon, service, employee, err := uc.loadCatalog(ctx, client.salonID, req.ServiceID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	// 4. Неоплаченные штрафы блокируют новые записи
	unpaid, err := uc.feeRepo.SumUnpaid(ctx, client.clientID, salon.ID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to sum unpaid fees of client=%d: %v", client.clientID, err)
		return nil, fmt.Errorf("%w: failed to sum unpaid fees: %v", ErrInternal, err)
	}
	if unpaid.IsPositive() {
		uc.logger.Warn("CreateBooking: client=%d has unpaid fees %s at salon=%d", client.clientID, unpaid.StringFixed(2), salon.ID)
		return rejected(domain.RejectUnpaidFees, fmt.Sprintf("client has unpaid cancellation fees: %s", unpaid.StringFixed(2))), nil
	}

	// 5. Снимаем истекшее временное закрытие до проверки
	reopened, err := uc.salonRepo.ReopenExpired(ctx, salon.ID, now)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to reopen salon=%d: %v", salon.ID, err)
		return nil, fmt.Errorf("%w: failed to reopen salon: %v", ErrInternal, err)
	}
	if reopened {
		uc.logger.Info("CreateBooking: salon=%d reopened after temporary closure", salon.ID)
		salon.IsTemporarilyClosed = false
		salon.ClosedUntil = nil
		salon.ClosureNote = nil
	}

	start := domain.CombineDateTime(parsed.date, parsed.time, salon.Location(uc.defaultLocation))

	// 6. Проверка и вставка в одной транзакции
	var (
		created   *domain.Appointment
		rejection *Rejection
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context, scope *txmanager.Scope) error {
		created, rejection = nil, nil

		result, err := uc.validator.Validate(txCtx, validator.Request{
			Salon:    salon,
			Service:  service,
			ClientID: client.clientID,
			Start:    start,
			Employee: employee,
			Scope:    scope,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: validation of slot failed: %v", err)
			return fmt.Errorf("%w: failed to validate slot: %w", ErrInternal, err)
		}
		if !result.OK {
			rejection = &Rejection{Code: result.Code, Reason: result.Reason}
			return nil
		}

		appointment := &domain.Appointment{
			ClientID:      client.clientID,
			SalonID:       salon.ID,
			ServiceID:     service.ID,
			EmployeeID:    ptr.Ptr(result.Employee.ID),
			Date:          domain.DateOnly(start),
			Time:          parsed.time,
			Status:        domain.StatusScheduled,
			Notes:         req.Notes,
			BookingLinkID: client.linkID,
		}

		created, err = uc.appointmentRepo.Create(txCtx, scope, appointment)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotTaken) {
				// гонка пережила блокировки, срабатывает уникальный индекс
				rejection = &Rejection{Code: domain.RejectSlotTaken, Reason: domain.MsgSlotTaken}
				return errRejected
			}
			uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		// Первая запись по ссылке привязывает ссылку к клиенту
		if client.bindLink {
			if err := uc.linkRepo.BindClient(txCtx, scope, *client.linkID, client.clientID); err != nil {
				if errors.Is(err, linkRepo.ErrAlreadyBound) {
					uc.logger.Warn("CreateBooking: link id=%d already bound to another client", *client.linkID)
					return ErrLinkBound
				}
				uc.logger.Error("CreateBooking: failed to bind link id=%d: %v", *client.linkID, err)
				return fmt.Errorf("%w: failed to bind link: %w", ErrInternal, err)
			}
		}

		return nil
	})

	if err != nil && !errors.Is(err, errRejected) {
		if errors.Is(err, txmanager.ErrRetriesExhausted) {
			uc.logger.Warn("CreateBooking: serialization retries exhausted for salon=%d at %s", salon.ID, start.Format(time.RFC3339))
			return rejected(domain.RejectSlotTaken, domain.MsgSlotTaken), nil
		}
		if !errors.Is(err, ErrInternal) && !errors.Is(err, ErrLinkBound) {
			err = fmt.Errorf("%w: transaction failed: %w", ErrInternal, err)
		}
		return nil, err
	}

	if rejection != nil {
		uc.logger.Warn("CreateBooking: rejected client=%d salon=%d at %s: %s",
			client.clientID, salon.ID, start.Format(time.RFC3339), rejection.Reason)
		return &Response{Rejection: rejection}, nil
	}

	uc.logger.Info("CreateBooking: successfully created appointment id=%d, employee=%d", created.ID, *created.EmployeeID)

	return &Response{Appointment: created}, nil
}

// clientRef клиент и салон, для которых создается запись
type clientRef struct {
	clientID int64
	salonID  int64
	linkID   *int64
	bindLink bool
}

// resolveClient определяет клиента. По ссылке: активная ссылка, привязанный клиент
// или новый клиент из сервиса идентификации по контактам ссылки и запроса.
func (uc *UseCase) resolveClient(ctx context.Context, req *Request) (*clientRef, error) {
	if req.LinkToken == nil {
		return &clientRef{clientID: req.ClientID, salonID: req.SalonID}, nil
	}

	link, err := uc.linkRepo.GetByToken(ctx, nil, *req.LinkToken)
	if err != nil {
		if errors.Is(err, linkRepo.ErrLinkNotFound) {
			uc.logger.Warn("CreateBooking: booking link not found")
			return nil, ErrLinkNotFound
		}
		uc.logger.Error("CreateBooking: failed to get booking link: %v", err)
		return nil, fmt.Errorf("%w: failed to get booking link: %v", ErrInternal, err)
	}
	if !link.IsActive {
		uc.logger.Warn("CreateBooking: booking link id=%d is inactive", link.ID)
		return nil, ErrLinkInactive
	}
	if req.SalonID != 0 && req.SalonID != link.SalonID {
		return nil, fmt.Errorf("%w: booking link belongs to another salon", ErrInvalidInput)
	}

	ref := &clientRef{salonID: link.SalonID, linkID: ptr.Ptr(link.ID)}
	if link.IsBound() {
		ref.clientID = *link.ClientID
		return ref, nil
	}

	contact := mergeContact(link, req.Contact)
	if contact.Name == "" {
		return nil, fmt.Errorf("%w: name is required on first booking", ErrInvalidInput)
	}

	clientID, err := uc.identityClient.ResolveClient(ctx, contact)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidContact) {
			uc.logger.Warn("CreateBooking: identity rejected contact data for link id=%d", link.ID)
			return nil, fmt.Errorf("%w: invalid contact data", ErrInvalidInput)
		}
		uc.logger.Error("CreateBooking: failed to resolve client for link id=%d: %v", link.ID, err)
		return nil, fmt.Errorf("%w: failed to resolve client: %v", ErrInternal, err)
	}

	ref.clientID = clientID
	ref.bindLink = true
	return ref, nil
}

// mergeContact данные из запроса имеют приоритет над временными данными ссылки
func mergeContact(link *domain.BookingLink, c Contact) identity.ContactInfo {
	pick := func(fromRequest, fromLink *string) *string {
		if fromRequest != nil && *fromRequest != "" {
			return fromRequest
		}
		return fromLink
	}

	return identity.ContactInfo{
		Name:  ptr.Deref(pick(c.Name, link.TempName), ""),
		Phone: pick(c.Phone, link.TempPhone),
		Email: pick(c.Email, link.TempEmail),
	}
}

func (uc *UseCase) loadCatalog(ctx context.Context, salonID, serviceID int64, employeeID *int64) (*domain.Salon, *domain.Service, *domain.Employee, error) {
	salon, err := uc.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrSalonNotFound) {
			uc.logger.Warn("CreateBooking: salon id=%d not found", salonID)
			return nil, nil, nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateBooking: failed to get salon id=%d: %v", salonID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	service, err := uc.salonRepo.GetService(ctx, salonID, serviceID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found in salon=%d", serviceID, salonID)
			return nil, nil, nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", serviceID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if employeeID == nil {
		return salon, service, nil, nil
	}

	employee, err := uc.salonRepo.GetEmployee(ctx, salonID, *employeeID)
	if err != nil {
		if errors.Is(err, salonRepo.ErrEmployeeNotFound) {
			uc.logger.Warn("CreateBooking: employee id=%d not found in salon=%d", *employeeID, salonID)
			return nil, nil, nil, ErrEmployeeNotFound
		}
		uc.logger.Error("CreateBooking: failed to get employee id=%d: %v", *employeeID, err)
		return nil, nil, nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
	}

	return salon, service, employee, nil
}

func (uc *UseCase) recordOutcome(resp *Response, err error) {
	switch {
	case err != nil && errors.Is(err, ErrInternal):
		uc.metrics.RecordBookingOutcome("error")
	case err != nil:
		uc.metrics.RecordBookingOutcome("invalid")
	case resp.Rejection != nil:
		uc.metrics.RecordBookingOutcome("rejected:" + string(resp.Rejection.Code))
	default:
		uc.metrics.RecordBookingOutcome("created")
	}
}

func rejected(code domain.RejectionCode, reason string) *Response {
	return &Response{Rejection: &Rejection{Code: code, Reason: reason}}
}
