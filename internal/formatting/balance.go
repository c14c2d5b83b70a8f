package formatting

import (
	"fmt"

	"github.com/UrikezZ/52HZSchoolBot/internal/model"
)

// ManualPaymentNote примечание к занятию, добавленному вручную
const ManualPaymentNote = "Оплата обсуждается с преподавателем"

// FormatMoney сумма в рублях без знака
func FormatMoney(amount int64) string {
	return fmt.Sprintf("%d руб.", amount)
}

// FormatBalance показывает депозит с "+", долг со своим минусом
func FormatBalance(balance int64) string {
	if balance >= 0 {
		return fmt.Sprintf("+%d руб.", balance)
	}
	return fmt.Sprintf("%d руб.", balance)
}

// PaymentDescription текст способа оплаты занятия для записи в журнал
func PaymentDescription(kind model.DebitKind, price int64) string {
	switch kind {
	case model.DebitPrepaid:
		return "списан 1 урок из предоплаты"
	case model.DebitDeposit:
		return fmt.Sprintf("списано %d руб. с депозита", price)
	case model.DebitNewDebt:
		return fmt.Sprintf("добавлен долг %d руб.", price)
	case model.DebitDebtIncrease:
		return fmt.Sprintf("долг увеличен на %d руб.", price)
	default:
		return ""
	}
}

// BalanceChanges строки "Изменения баланса" для итогового уведомления
func BalanceChanges(lessonsSpent int, depositSpent, debtAdded int64) []string {
	var lines []string
	if lessonsSpent > 0 {
		lines = append(lines, fmt.Sprintf("Списано уроков: %d шт.", lessonsSpent))
	}
	if depositSpent > 0 {
		lines = append(lines, fmt.Sprintf("Списано с депозита: %s", FormatMoney(depositSpent)))
	}
	if debtAdded > 0 {
		lines = append(lines, fmt.Sprintf("Добавлен долг: %s", FormatMoney(debtAdded)))
	}
	return lines
}
