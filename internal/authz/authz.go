// Package authz 提供资源归属判定。
//
// 当前模型只有一条规则：用户只能访问自己名下的卡片及其证书。
// 判定与取数分离，调用方负责先把卡片查出来再问归属。
package authz

import "github.com/liquan-next/internal/models"

// CanAccessCard 判定用户是否拥有该卡片
func CanAccessCard(userID uint, card *models.Card) bool {
	if userID == 0 || card == nil {
		return false
	}
	return card.UserID == userID
}
