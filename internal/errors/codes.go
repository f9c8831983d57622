package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== 회원 (MEMBER_) ====================
	MemberNotFound     = "MEMBER_NOT_FOUND"     // 회원 없음
	MemberEmailExists  = "MEMBER_EMAIL_EXISTS"  // 이메일 중복
	MemberInvalidInput = "MEMBER_INVALID_INPUT" // 필수 항목 누락

	// ==================== 상품 (ITEM_) ====================
	ItemNotFound     = "ITEM_NOT_FOUND"     // 상품 없음
	ItemOutOfStock   = "ITEM_OUT_OF_STOCK"  // 재고 부족
	ItemInvalidInput = "ITEM_INVALID_INPUT" // 잘못된 상품 정보

	// ==================== 주문 (ORDER_) ====================
	OrderNotFound         = "ORDER_NOT_FOUND"         // 주문 없음
	OrderAlreadyCancelled = "ORDER_ALREADY_CANCELLED" // 이미 취소된 주문
	OrderInvalidInput     = "ORDER_INVALID_INPUT"     // 잘못된 주문 요청

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 영속성 (PERSISTENCE_) ====================
	PersistenceLazyLoad     = "PERSISTENCE_LAZY_LOAD"     // 세션 종료 후 지연 로딩
	PersistenceSessionEnded = "PERSISTENCE_SESSION_ENDED" // 종료된 세션 사용
	PersistenceRollbackOnly = "PERSISTENCE_ROLLBACK_ONLY" // 롤백 전용 트랜잭션

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
