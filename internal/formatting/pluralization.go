package formatting

func pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeLessons возвращает правильное склонение слова "занятие"
func PluralizeLessons(count int) string {
	return pluralize(count, "занятие", "занятия", "занятий")
}

// PluralizeSlots возвращает правильное склонение слова "слот"
func PluralizeSlots(count int) string {
	return pluralize(count, "слот", "слота", "слотов")
}

// PluralizeRequests возвращает правильное склонение слова "заявка"
func PluralizeRequests(count int) string {
	return pluralize(count, "заявка", "заявки", "заявок")
}

// PluralizeReminders возвращает правильное склонение слова "напоминание"
func PluralizeReminders(count int) string {
	return pluralize(count, "напоминание", "напоминания", "напоминаний")
}
