package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskpilot/internal/model"
	"taskpilot/internal/service"
)

type pilotTask struct {
	title       string
	description string
	priority    model.TaskPriority
	assignedTo  string
	dueDate     string
}

// eRupi 试点计划的 17 项任务
var pilotTasks = []pilotTask{
	{"Finalize two Malls and communicate with Malls", "Obtain consent to participate in program and establish partnership agreements", model.TaskPriorityHigh, "Partnership Team", "2024-02-01"},
	{"Define nature of Program", "Define Title, participating merchants, T&C, How to Use, Artwork for voucher, Brand and Logo Images", model.TaskPriorityHigh, "Design Team", "2024-02-05"},
	{"Obtain/Repurpose MID from bank", "Get MID from ICICI clearly showing Fincentive – Mall Name – pilot in voucher title", model.TaskPriorityCritical, "Banking Team", "2024-02-10"},
	{"Mobilising physical field force", "Organize and deploy field teams for customer engagement and on-ground operations", model.TaskPriorityMedium, "Operations Team", "2024-02-15"},
	{"Collect customer information", "Collect customer Name, Mobile number associated with Bank and Gpay. Install and register Gpay if needed", model.TaskPriorityHigh, "Field Team", "2024-02-20"},
	{"Share customer list with Gpay for activation", "Coordinate with Gpay team to activate pilot features for prequalified customers", model.TaskPriorityCritical, "Integration Team", "2024-02-25"},
	{"Activate participating merchant", "Set up and activate merchant systems for voucher acceptance and processing", model.TaskPriorityHigh, "Merchant Team", "2024-03-01"},
	{"Create Pilot Test Distributor", "Set up internal distributor system for issuing free vouchers to pilot customers", model.TaskPriorityMedium, "Tech Team", "2024-03-05"},
	{"Live guide + Video for customers", "Create customer education materials and get approval from Gpay and ICICI for brand guidelines", model.TaskPriorityMedium, "Marketing Team", "2024-03-10"},
	{"Verify Google Pay activation for all customers", "Confirm that all pilot participants have successfully activated Google Pay features", model.TaskPriorityHigh, "Support Team", "2024-03-15"},
	{"Generate Saral codes in bulk", "Generate internal voucher codes and send custom email invitations to pilot participants", model.TaskPriorityMedium, "Tech Team", "2024-03-20"},
	{"WhatsApp nudge to customers for setting PIN", "Send WhatsApp notifications to guide customers through PIN setup process", model.TaskPriorityMedium, "Communication Team", "2024-03-25"},
	{"Daily MIS from ICICI", "Set up daily reporting from ICICI for PIN setup tracking and failed redemption data in CSV format", model.TaskPriorityHigh, "Data Team", "2024-03-30"},
	{"Tracking MIS for pilot objectives", "Monitor Saral code issued, eRupi issued, PIN set, Redemption, Failure, and Expiry metrics", model.TaskPriorityCritical, "Analytics Team", "2024-04-05"},
	{"Extend Expiry Date capability", "Implement voucher extension process in case pilot needs extended duration for better coverage", model.TaskPriorityLow, "Tech Team", "2024-04-10"},
	{"Additional voucher issuance", "Capability to issue additional vouchers to same participants or increase participant count", model.TaskPriorityMedium, "Operations Team", "2024-04-15"},
	{"Support Queries management", "Handle customer support queries and provide assistance throughout the pilot program", model.TaskPriorityHigh, "Support Team", "2024-04-20"},
}

// Tasks 返回待写入的种子任务（每次返回新对象）
func Tasks() []model.Task {
	tasks := make([]model.Task, 0, len(pilotTasks))
	for _, p := range pilotTasks {
		due, err := time.Parse("2006-01-02", p.dueDate)
		if err != nil {
			panic(fmt.Sprintf("seed: bad due date %q", p.dueDate))
		}
		tasks = append(tasks, model.Task{
			Title:       p.title,
			Description: model.StringPtr(p.description),
			Status:      model.TaskStatusNotStarted,
			Priority:    p.priority,
			AssignedTo:  model.StringPtr(p.assignedTo),
			DueDate:     &due,
		})
	}
	return tasks
}

// Run 写入全部种子任务，每个任务带一条 system 的 created 日志
func Run(ctx context.Context, svc *service.TaskService) (int, error) {
	log.Printf("[seed] 开始写入试点任务...")
	tasks := Tasks()
	for i := range tasks {
		if err := svc.CreateTask(ctx, &tasks[i]); err != nil {
			return i, fmt.Errorf("写入任务 %q 失败: %w", tasks[i].Title, err)
		}
		log.Printf("[seed] 已创建任务: %s", tasks[i].Title)
	}
	log.Printf("[seed] 共写入 %d 个任务", len(tasks))
	return len(tasks), nil
}

// RunIfEmpty 仅在没有任何任务时写入
func RunIfEmpty(ctx context.Context, svc *service.TaskService) (int, error) {
	existing, err := svc.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("读取任务失败: %w", err)
	}
	if len(existing) > 0 {
		log.Printf("[seed] 已有 %d 个任务，跳过", len(existing))
		return 0, nil
	}
	return Run(ctx, svc)
}
