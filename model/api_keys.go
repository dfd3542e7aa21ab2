package model

/*
 * Copyright © 2018-2019 Around25 SRL <office@around25.com>
 *
 * Licensed under the Around25 Wallet License Agreement (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.around25.com/licenses/EXCHANGE_LICENSE
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 * @author		Cosmin Harangus <cosmin@around25.com>
 * @copyright 2018-2019 Around25 SRL <office@around25.com>
 * @license 	EXCHANGE_LICENSE
 */

import (
	"crypto/sha1"
	"encoding/hex"
	"math/rand"
	"strings"

	gouuid "github.com/nu7hatch/gouuid"
)

// APIKeyPrefixLength is the size of the public part of a key
const APIKeyPrefixLength = 7

// APIKey is the credential view of an affiliate used by the auth layer and its cache
type APIKey struct {
	AffiliateID uint64          `gorm:"column:id" json:"affiliate_id"`
	Prefix      string          `gorm:"column:api_key_prefix" json:"prefix"`
	Hash        string          `gorm:"column:api_key_hash" json:"-"`
	Role        Role            `gorm:"column:role" json:"role"`
	Status      AffiliateStatus `gorm:"column:status" json:"status"`
	Tier        Tier            `gorm:"column:tier" json:"tier"`
}

// NewAPIKey generates a new key and returns the plain value, its prefix and its hash.
// The plain value is only shown once to the affiliate.
func NewAPIKey() (plain, prefix, hash string) {
	prefix = randSeq(APIKeyPrefixLength)
	key, _ := gouuid.NewV4()
	plain = prefix + "." + key.String()
	return plain, prefix, HashString(plain)
}

// APIKeyPrefix returns the public prefix of the given key
func APIKeyPrefix(key string) string {
	return strings.Split(key, ".")[0]
}

// ValidateKey check if the given apiKey matches the stored hash
func (key *APIKey) ValidateKey(apikeyused string) bool {
	return key.Hash != "" && key.Hash == HashString(apikeyused)
}

// HashString godoc
func HashString(str string) string {
	h := sha1.New()
	_, _ = h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}

func randSeq(n int) string {
	var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
