package main

import (
	"fmt"
	"os"
	"time"

	"github.com/UrikezZ/52HZSchoolBot/internal/controller/callbacks/common"
	"github.com/UrikezZ/52HZSchoolBot/internal/model"
	"github.com/UrikezZ/52HZSchoolBot/internal/schedule"
)

func main() {
	// Создаем тестовые данные
	now := time.Now()

	// Занятые слоты: slot_id -> id ученика
	taken := map[string]int64{
		schedule.SlotID(0, 13): 100,
		schedule.SlotID(0, 14): 200,
		schedule.SlotID(2, 18): 100,
		schedule.SlotID(4, 21): 300,
	}
	names := map[int64]string{
		100: "Анна Смирнова",
		200: "Борис Петров",
		300: "Виктория Очень-Длинная-Фамилия",
	}

	// Заявки, в том числе на уже занятый слот
	requests := []*model.AvailabilityRequest{
		{StudentID: 400, SelectedSlots: []string{schedule.SlotID(1, 15), schedule.SlotID(1, 16), schedule.SlotID(0, 13)}},
		{StudentID: 500, SelectedSlots: []string{schedule.SlotID(1, 15), schedule.SlotID(3, 19)}},
	}

	grid := common.BuildWeekGrid(now, taken, names, requests)

	// Генерируем изображение
	imageData, err := common.GenerateWeekImage(grid, now)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	// Сохраняем в файл
	filename := "week.png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	days := schedule.WeekWindow(now)
	fmt.Printf("✅ Изображение успешно сохранено в %s\n", filename)
	fmt.Printf("📅 Период: %s - %s\n", days[0].DateText(), days[len(days)-1].DateText())
	fmt.Printf("📊 Занято: %d, заявок: %d\n", len(taken), len(requests))
}
