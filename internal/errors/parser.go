package errors

import (
	"errors"
	"strings"

	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/internal/app/service"
	"github.com/ikkim/shopp-backend/internal/persistence"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// sentinel 에러 → 코드/메시지 매핑. 위에서부터 먼저 일치하는 항목을 사용
var sentinels = []struct {
	err  error
	info ErrorInfo
}{
	{service.ErrDuplicateMember, ErrorInfo{MemberEmailExists, "이미 가입된 회원입니다"}},
	{service.ErrInvalidMember, ErrorInfo{MemberInvalidInput, "이름, 이메일, 비밀번호는 필수 항목입니다"}},
	{service.ErrMemberNotFound, ErrorInfo{MemberNotFound, "회원을 찾을 수 없습니다"}},
	{service.ErrItemNotFound, ErrorInfo{ItemNotFound, "상품을 찾을 수 없습니다"}},
	{service.ErrInvalidItem, ErrorInfo{ItemInvalidInput, "상품 정보가 올바르지 않습니다"}},
	{model.ErrOutOfStock, ErrorInfo{ItemOutOfStock, "상품의 재고가 부족합니다"}},
	{model.ErrInvalidQuantity, ErrorInfo{ValidationInvalidInput, "수량은 1개 이상이어야 합니다"}},
	{service.ErrOrderNotFound, ErrorInfo{OrderNotFound, "주문을 찾을 수 없습니다"}},
	{service.ErrOrderAlreadyCancelled, ErrorInfo{OrderAlreadyCancelled, "이미 취소된 주문입니다"}},
	{model.ErrAlreadyCancelled, ErrorInfo{OrderAlreadyCancelled, "이미 취소된 주문입니다"}},
	{service.ErrInvalidOrder, ErrorInfo{OrderInvalidInput, "주문 요청이 올바르지 않습니다"}},
	{persistence.ErrLazyInitialization, ErrorInfo{PersistenceLazyLoad, "연관 데이터를 불러올 수 없습니다"}},
	{persistence.ErrSessionClosed, ErrorInfo{PersistenceSessionEnded, "이미 종료된 작업입니다. 다시 시도해주세요"}},
	{persistence.ErrEntityNotFound, ErrorInfo{ResourceNotFound, "참조하는 데이터를 찾을 수 없습니다"}},
	{persistence.ErrTransientReference, ErrorInfo{ValidationInvalidInput, "저장되지 않은 데이터를 참조하고 있습니다"}},
}

// ParseError 에러를 파싱하여 사용자 친화적인 메시지와 코드로 변환
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	// 1. 도메인/서비스 에러
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.info
		}
	}

	// 2. GORM 기본 에러
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 3. 제약 조건 위반 (PostgreSQL / SQLite)
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(errStrLower, "duplicate key") ||
		strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr, context)
	}
	if strings.Contains(errStrLower, "not-null constraint") || strings.Contains(errStrLower, "not null constraint") {
		return parseNotNullError(errStr)
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "입력값이 유효하지 않습니다"}
	}

	// 4. 롤백 전용 트랜잭션 (원인을 알 수 없는 경우)
	if errors.Is(err, persistence.ErrRollbackOnly) {
		return ErrorInfo{Code: PersistenceRollbackOnly, Message: "처리 중 오류가 발생해 작업이 취소되었습니다"}
	}

	// 5. 연결 에러
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalDatabaseError,
			Message: "데이터베이스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// parseDuplicateKeyError Unique constraint 위반 에러 파싱
func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// 이메일 중복
	if strings.Contains(errLower, "email") || strings.Contains(errLower, "idx_members_email") {
		return ErrorInfo{
			Code:    MemberEmailExists,
			Message: "이미 사용 중인 이메일입니다",
		}
	}

	// Primary key 중복
	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "이미 존재하는 데이터입니다. 다시 시도해주세요",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

// parseForeignKeyError Foreign key constraint 위반 에러 파싱
func parseForeignKeyError(errStr string, context string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	// 삭제 시 참조 중인 데이터가 있는 경우
	if strings.Contains(errLower, "still referenced") {
		if strings.Contains(context, "item") || strings.Contains(context, "상품") {
			return ErrorInfo{
				Code:    ResourceConflict,
				Message: "주문에 포함된 상품은 삭제할 수 없습니다",
			}
		}
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 삭제할 수 없습니다",
		}
	}

	if strings.Contains(errLower, "order_id") || strings.Contains(errLower, "fk_orders") {
		return ErrorInfo{
			Code:    OrderNotFound,
			Message: "존재하지 않는 주문입니다",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "참조하는 데이터를 찾을 수 없습니다",
	}
}

// parseNotNullError Not null constraint 위반 에러 파싱
func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "이메일은 필수 항목입니다"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "비밀번호는 필수 항목입니다"}
	}
	if strings.Contains(errLower, "item_nm") || strings.Contains(errLower, "name") {
		return ErrorInfo{Code: ValidationRequired, Message: "이름은 필수 항목입니다"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "필수 항목이 누락되었습니다",
	}
}

// getNotFoundMessage context에 따른 Not Found 메시지
func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "member") || strings.Contains(contextLower, "회원") {
		return "회원을 찾을 수 없습니다"
	}
	if strings.Contains(contextLower, "item") || strings.Contains(contextLower, "상품") {
		return "상품을 찾을 수 없습니다"
	}
	if strings.Contains(contextLower, "order") || strings.Contains(contextLower, "주문") {
		return "주문을 찾을 수 없습니다"
	}

	return "요청한 데이터를 찾을 수 없습니다"
}

// getDefaultErrorMessage context에 따른 기본 에러 메시지
func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "seed") || strings.Contains(contextLower, "import") || strings.Contains(contextLower, "등록") {
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	if strings.Contains(contextLower, "migrate") || strings.Contains(contextLower, "마이그레이션") {
		return "스키마 마이그레이션 중 오류가 발생했습니다"
	}
	if strings.Contains(contextLower, "cancel") || strings.Contains(contextLower, "취소") {
		return "주문 취소 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}

	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}
