// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message/catalog"
)

// Key identifies a user-facing message. Keys double as the fallback text.
type Key string

const (
	LoginSuccess       Key = "login.success"
	LoginFailed        Key = "login.failed"
	LogoutDone         Key = "logout.done"
	SessionExpired     Key = "session.expired"
	SessionRemoved     Key = "session.removed"
	NotAuthenticated   Key = "session.required"
	Loading            Key = "loading"
	NetworkError       Key = "error.network"
	UnreadCount        Key = "notifications.unread"
	MarkedRead         Key = "notifications.marked_read"
	MarkedAllRead      Key = "notifications.marked_all_read"
	NotificationGone   Key = "notifications.deleted"
	ContractSaved      Key = "contracts.saved"
	ContractCreated    Key = "contracts.created"
	ContractDeleted    Key = "contracts.deleted"
	ContractsLoadFail  Key = "contracts.load_failed"
	DocumentUploaded   Key = "documents.uploaded"
	DocumentSaved      Key = "documents.saved"
	DocumentDeleted    Key = "documents.deleted"
	DownloadSaved      Key = "download.saved"
	ExpiringSoon       Key = "dashboard.expiring"
	PerMonth           Key = "money.per_month"
	StatusDraft        Key = "status.draft"
	StatusActive       Key = "status.active"
	StatusCompleted    Key = "status.completed"
	StatusTerminated   Key = "status.terminated"
	TypeInfo           Key = "type.info"
	TypeContractExpiry Key = "type.contract_expiry"
	TypePaymentDue     Key = "type.payment_due"
	TypeDocumentExpiry Key = "type.document_expiry"
	TypeDocumentUpload Key = "type.document_upload"
	RoleAdmin          Key = "role.admin"
	RoleManager        Key = "role.manager"
	RoleUser           Key = "role.user"

	Brand               Key = "brand"
	NavDashboard        Key = "nav.dashboard"
	NavContracts        Key = "nav.contracts"
	NavDocuments        Key = "nav.documents"
	NavNotifications    Key = "nav.notifications"
	NavProfile          Key = "nav.profile"
	NavLogout           Key = "nav.logout"
	LoginTitle          Key = "login.title"
	FieldEmail          Key = "field.email"
	FieldPassword       Key = "field.password"
	SignIn              Key = "login.submit"
	EmailRequired       Key = "login.email_required"
	FieldContractNumber Key = "field.contract_number"
	FieldClient         Key = "field.client"
	FieldPhone          Key = "field.phone"
	FieldAddress        Key = "field.address"
	FieldPropertyType   Key = "field.property_type"
	FieldRent           Key = "field.rent"
	FieldDeposit        Key = "field.deposit"
	FieldPeriod         Key = "field.period"
	FieldStatus         Key = "field.status"
	FieldTitle          Key = "field.title"
	FieldType           Key = "field.type"
	FieldSize           Key = "field.size"
	FieldTags           Key = "field.tags"
	FieldExpiry         Key = "field.expiry"
	FieldUploaded       Key = "field.uploaded"
	FieldCreated        Key = "field.created"
	FieldFullName       Key = "field.full_name"
	FieldRole           Key = "field.role"
	FieldAccount        Key = "field.account"
	AccountActive       Key = "account.active"
	AccountDisabled     Key = "account.disabled"
	StatTotalContracts  Key = "stat.total_contracts"
	StatActiveContracts Key = "stat.active_contracts"
	StatTotalDocuments  Key = "stat.total_documents"
	StatUnread          Key = "stat.unread"
	StatRevenue         Key = "stat.revenue"
	RecentContracts     Key = "dashboard.recent_contracts"
	RecentNotifications Key = "dashboard.recent_notifications"
	LinkedDocuments     Key = "contract.documents"
	FilterAll           Key = "filter.all"
	FilterUnread        Key = "filter.unread"
	NoData              Key = "empty"
	ConfirmDelete       Key = "confirm.delete"
	Welcome             Key = "dashboard.welcome"
	ContractTitle       Key = "contract.title"
)

type entry struct {
	ru, en string
}

var messages = map[Key]entry{
	LoginSuccess:       {"Вход выполнен успешно", "Signed in"},
	LoginFailed:        {"Ошибка входа. Проверьте email и пароль.", "Sign-in failed. Check your email and password."},
	LogoutDone:         {"Выход выполнен", "Signed out"},
	SessionExpired:     {"Сессия истекла. Войдите снова.", "Session expired. Please sign in again."},
	SessionRemoved:     {"Сессия завершена в другом окне", "Signed out from another terminal"},
	NotAuthenticated:   {"Требуется вход. Выполните docflow login.", "Not signed in. Run docflow login."},
	Loading:            {"Загрузка…", "Loading…"},
	NetworkError:       {"Сервер недоступен", "Server unreachable"},
	UnreadCount:        {"Непрочитанных: %d", "Unread: %d"},
	MarkedRead:         {"Отмечено как прочитанное", "Marked as read"},
	MarkedAllRead:      {"Все уведомления прочитаны", "All notifications marked as read"},
	NotificationGone:   {"Уведомление удалено", "Notification deleted"},
	ContractSaved:      {"Договор обновлен", "Contract updated"},
	ContractCreated:    {"Договор создан", "Contract created"},
	ContractDeleted:    {"Договор удален", "Contract deleted"},
	ContractsLoadFail:  {"Ошибка загрузки договоров", "Failed to load contracts"},
	DocumentUploaded:   {"Документ загружен успешно", "Document uploaded"},
	DocumentSaved:      {"Документ обновлен", "Document updated"},
	DocumentDeleted:    {"Документ удален", "Document deleted"},
	DownloadSaved:      {"Сохранено: %s", "Saved to %s"},
	ExpiringSoon:       {"%d договор(ов) истекают в ближайшие 30 дней", "%d contract(s) expire within 30 days"},
	PerMonth:           {"%s / месяц", "%s / month"},
	StatusDraft:        {"Черновик", "Draft"},
	StatusActive:       {"Активный", "Active"},
	StatusCompleted:    {"Завершен", "Completed"},
	StatusTerminated:   {"Расторгнут", "Terminated"},
	TypeInfo:           {"Информация", "Information"},
	TypeContractExpiry: {"Истечение договора", "Contract expiry"},
	TypePaymentDue:     {"Оплата аренды", "Rent payment"},
	TypeDocumentExpiry: {"Истечение документа", "Document expiry"},
	TypeDocumentUpload: {"Загрузка документа", "Document upload"},
	RoleAdmin:          {"Администратор", "Administrator"},
	RoleManager:        {"Менеджер", "Manager"},
	RoleUser:           {"Пользователь", "User"},

	Brand:               {"Кызыл Жар", "Kyzyl Zhar"},
	NavDashboard:        {"Главная", "Dashboard"},
	NavContracts:        {"Договоры", "Contracts"},
	NavDocuments:        {"Документы", "Documents"},
	NavNotifications:    {"Уведомления", "Notifications"},
	NavProfile:          {"Профиль", "Profile"},
	NavLogout:           {"Выйти", "Sign out"},
	LoginTitle:          {"Система управления документами", "Document management system"},
	FieldEmail:          {"Email", "Email"},
	FieldPassword:       {"Пароль", "Password"},
	SignIn:              {"Войти", "Sign in"},
	EmailRequired:       {"Введите email и пароль", "Enter email and password"},
	FieldContractNumber: {"Номер договора", "Contract number"},
	FieldClient:         {"Клиент", "Client"},
	FieldPhone:          {"Телефон", "Phone"},
	FieldAddress:        {"Адрес объекта", "Property address"},
	FieldPropertyType:   {"Тип объекта", "Property type"},
	FieldRent:           {"Сумма аренды", "Rent"},
	FieldDeposit:        {"Залог", "Deposit"},
	FieldPeriod:         {"Срок действия", "Term"},
	FieldStatus:         {"Статус", "Status"},
	FieldTitle:          {"Название", "Title"},
	FieldType:           {"Тип", "Type"},
	FieldSize:           {"Размер", "Size"},
	FieldTags:           {"Теги", "Tags"},
	FieldExpiry:         {"Срок действия", "Expiry date"},
	FieldUploaded:       {"Загружен", "Uploaded"},
	FieldCreated:        {"Создан", "Created"},
	FieldFullName:       {"Полное имя", "Full name"},
	FieldRole:           {"Роль", "Role"},
	FieldAccount:        {"Учетная запись", "Account"},
	AccountActive:       {"Активна", "Active"},
	AccountDisabled:     {"Заблокирована", "Disabled"},
	StatTotalContracts:  {"Всего договоров", "Total contracts"},
	StatActiveContracts: {"Активных договоров", "Active contracts"},
	StatTotalDocuments:  {"Документов", "Documents"},
	StatUnread:          {"Непрочитанных уведомлений", "Unread notifications"},
	StatRevenue:         {"Ежемесячный доход", "Monthly revenue"},
	RecentContracts:     {"Последние договоры", "Recent contracts"},
	RecentNotifications: {"Последние уведомления", "Recent notifications"},
	LinkedDocuments:     {"Документы договора", "Contract documents"},
	FilterAll:           {"Все", "All"},
	FilterUnread:        {"Непрочитанные", "Unread"},
	NoData:              {"Нет данных", "Nothing here"},
	ConfirmDelete:       {"Удалить? (y/n)", "Delete? (y/n)"},
	Welcome:             {"Добро пожаловать, %s!", "Welcome, %s!"},
	ContractTitle:       {"Договор № %s", "Contract %s"},
}

var defaultCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Russian))
	for k, e := range messages {
		// Errors here mean a malformed message; the table above is static.
		_ = b.SetString(language.Russian, string(k), e.ru)
		_ = b.SetString(language.English, string(k), e.en)
	}
	return b
}
