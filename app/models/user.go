package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is a login identity. Admins run the back office; a client user backs a
// Client record and only sees that client's proposals and advertisements.
type User struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName   string     `gorm:"type:varchar(100)" json:"firstName" validate:"required,max=100"`
	LastName    string     `gorm:"type:varchar(100)" json:"lastName" validate:"max=100"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role        string     `gorm:"type:varchar(20);default:'client';index" json:"role" validate:"oneof=admin client"`
	PhoneNumber string     `gorm:"type:varchar(20)" json:"phoneNumber"`
	APIKeyHash  string     `gorm:"type:varchar(64);index" json:"-"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"lastLoginAt"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()
	return v.Struct(u)
}

func CreateUser(firstName, lastName, email, password, role string) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  pw,
		Role:      role,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateAPIKey creates a random API key and returns (plaintext, hash).
// Only the hash is persisted; the plaintext is shown to the user once.
func GenerateAPIKey() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	key := hex.EncodeToString(buf)
	return key, HashAPIKey(key), nil
}

// HashAPIKey returns the lookup hash for a presented API key.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
