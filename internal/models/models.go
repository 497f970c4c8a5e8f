package models

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string `gorm:"size:50;not null"              json:"username"`
	Email        string `gorm:"size:50;uniqueIndex;not null"  json:"email"`
	PasswordHash string `gorm:"size:150;not null"             json:"-"`
	IsConfirmed  bool   `gorm:"default:false"                 json:"is_confirmed"`
	IsAdmin      bool   `gorm:"default:false"                 json:"is_admin"`
	CreatedAt    int64  `gorm:"autoCreateTime"                json:"create_timestamp"`
	UpdatedAt    int64  `gorm:"autoUpdateTime"                json:"update_timestamp"`
}

// TokenPair is one login session: the access and refresh token of a single
// issuance share the UUID, so revoking the row retires both at once.
type TokenPair struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID             string `gorm:"uniqueIndex;not null"     json:"uuid"`
	UserID           uint   `gorm:"index;not null"           json:"user_id"`
	AccessToken      string `gorm:"size:512;not null"        json:"access_token"`
	RefreshToken     string `gorm:"size:512;not null"        json:"refresh_token"`
	AccessExpiresAt  int64  `gorm:"not null"                 json:"access_token_expires_timestamp"`
	RefreshExpiresAt int64  `gorm:"not null"                 json:"refresh_token_expires_timestamp"`
	Revoked          bool   `gorm:"default:false"            json:"revoked"`
	CreatedAt        int64  `gorm:"autoCreateTime"           json:"create_timestamp"`
	UpdatedAt        int64  `gorm:"autoUpdateTime"           json:"update_timestamp"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  *uint   `gorm:"index"                    json:"category_id"`
	Name        string  `gorm:"size:100;not null"        json:"name"`
	Description string  `gorm:"size:2000;not null"       json:"description"`
	Price       float64 `gorm:"not null"                 json:"price"`
	Image       string  `json:"image"`
	CreatedAt   int64   `gorm:"autoCreateTime" json:"create_timestamp"`
	UpdatedAt   int64   `gorm:"autoUpdateTime" json:"update_timestamp"`
}

type Category struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"size:50;not null"         json:"name"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"create_timestamp"`
	UpdatedAt int64  `gorm:"autoUpdateTime"           json:"update_timestamp"`
}

type Order struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint   `gorm:"index;not null"           json:"user_id"`
	ProductID *uint  `gorm:"index"                    json:"product_id"`
	Quantity  uint   `gorm:"not null"                 json:"quantity"`
	Status    string `gorm:"size:50;not null"         json:"status"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"create_timestamp"`
	UpdatedAt int64  `gorm:"autoUpdateTime"           json:"update_timestamp"`
}

type CartItem struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID    uint  `gorm:"index;not null"              json:"user_id"`
	ProductID uint  `gorm:"not null"                    json:"product_id"`
	Quantity  uint  `gorm:"default:1;check:quantity>0"  json:"quantity"`
	CreatedAt int64 `gorm:"autoCreateTime"              json:"create_timestamp"`
	UpdatedAt int64 `gorm:"autoUpdateTime"              json:"update_timestamp"`
}

type Comment struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint  `gorm:"index"                    json:"user_id"`
	Rating    int    `gorm:"not null"                 json:"rating"`
	Text      string `gorm:"not null"                 json:"text"`
	CreatedAt int64  `gorm:"autoCreateTime"           json:"create_timestamp"`
	UpdatedAt int64  `gorm:"autoUpdateTime"           json:"update_timestamp"`
}
